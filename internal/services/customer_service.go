package services

import (
	"context"
	"fmt"
	"strings"

	"fare-backend/internal/cache"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
)

type CustomerService struct {
	customerRepo *repositories.CustomerRepository
	locationRepo *repositories.LocationRepository
}

func NewCustomerService(customerRepo *repositories.CustomerRepository, locationRepo *repositories.LocationRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		locationRepo: locationRepo,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if req.FixedFare <= 0 {
		return nil, fmt.Errorf("fixed fare must be greater than zero")
	}
	if _, err := s.locationRepo.GetByID(ctx, req.LocationID); err != nil {
		return nil, fmt.Errorf("invalid location: %w", err)
	}

	customer, err := s.customerRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	cache.InvalidateCustomerCaches(ctx)
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, id int) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, page, limit int, search string, locationID int) (*models.CustomerPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.customerRepo.List(ctx, page, limit, search, locationID)
}

func (s *CustomerService) Update(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if req.FixedFare <= 0 {
		return nil, fmt.Errorf("fixed fare must be greater than zero")
	}
	if _, err := s.locationRepo.GetByID(ctx, req.LocationID); err != nil {
		return nil, fmt.Errorf("invalid location: %w", err)
	}

	customer, err := s.customerRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	cache.InvalidateCustomerCaches(ctx)
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateCustomerCaches(ctx)
	return nil
}

func (s *CustomerService) ListUnpaid(ctx context.Context, locationID int) ([]*models.Customer, error) {
	return s.customerRepo.ListUnpaid(ctx, locationID)
}
