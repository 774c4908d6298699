package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"fare-backend/internal/config"
	"fare-backend/internal/repositories"
	"fare-backend/internal/timeutil"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveService uploads month-end payment exports to S3-compatible storage.
// When archiving is disabled in config every method is a cheap no-op.
type ArchiveService struct {
	cfg          *config.Config
	paymentRepo  *repositories.PaymentRepository
	customerRepo *repositories.CustomerRepository
}

func NewArchiveService(cfg *config.Config, paymentRepo *repositories.PaymentRepository, customerRepo *repositories.CustomerRepository) *ArchiveService {
	return &ArchiveService{
		cfg:          cfg,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
	}
}

func (s *ArchiveService) Enabled() bool {
	return s.cfg.Archive.Enabled
}

func (s *ArchiveService) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.Archive.AccessKey,
			s.cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(s.cfg.Archive.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure archive client: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Archive.Endpoint)
		}
	}), nil
}

// ArchivePayments exports recent payments as CSV and uploads them under a
// date-stamped key. Returns the object key.
func (s *ArchiveService) ArchivePayments(ctx context.Context) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("archiving is not enabled")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	payments, err := s.paymentRepo.List(ctx, 10000)
	if err != nil {
		return "", err
	}
	data, err := BuildPaymentsCSV(payments)
	if err != nil {
		return "", err
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("payments/payments_%s.csv", timeutil.Now().Format("20060102_150405"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Archive.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}

	log.Printf("[Archive] Uploaded %s (%d bytes)", key, len(data))
	return key, nil
}

// ArchiveUnpaid exports the current unpaid customer list, typically run just
// before a billing cycle rollover to snapshot who still owed what.
func (s *ArchiveService) ArchiveUnpaid(ctx context.Context) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("archiving is not enabled")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	customers, err := s.customerRepo.ListUnpaid(ctx, 0)
	if err != nil {
		return "", err
	}
	data, err := BuildUnpaidCSV(customers)
	if err != nil {
		return "", err
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("unpaid/unpaid_%s.csv", timeutil.Now().Format("20060102_150405"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Archive.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}

	log.Printf("[Archive] Uploaded %s (%d bytes)", key, len(data))
	return key, nil
}
