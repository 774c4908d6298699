package services

import (
	"context"
	"fmt"
	"strings"

	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
)

type LocationService struct {
	locationRepo *repositories.LocationRepository
	customerRepo *repositories.CustomerRepository
}

func NewLocationService(locationRepo *repositories.LocationRepository, customerRepo *repositories.CustomerRepository) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		customerRepo: customerRepo,
	}
}

func (s *LocationService) Create(ctx context.Context, req *models.CreateLocationRequest) (*models.Location, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("location name is required")
	}
	return s.locationRepo.Create(ctx, req)
}

func (s *LocationService) List(ctx context.Context) ([]*models.Location, error) {
	return s.locationRepo.List(ctx)
}

func (s *LocationService) Update(ctx context.Context, id int, req *models.UpdateLocationRequest) (*models.Location, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("location name is required")
	}
	return s.locationRepo.Update(ctx, id, req)
}

// Delete refuses to remove a location that still has customers assigned.
func (s *LocationService) Delete(ctx context.Context, id int) error {
	count, err := s.customerRepo.CountByLocation(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check location usage: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete location: %d customer(s) are still assigned to it", count)
	}
	return s.locationRepo.Delete(ctx, id)
}
