package store

import (
	"context"
	"fmt"

	"ride-booking-api/models"
)

func (s *Store) ListLocations(ctx context.Context) ([]models.DropoffLocation, error) {
	var locations []models.DropoffLocation
	if err := s.db.WithContext(ctx).Order("name asc").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *Store) FindLocation(ctx context.Context, id uint) (*models.DropoffLocation, error) {
	var loc models.DropoffLocation
	if err := s.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

func (s *Store) CreateLocation(ctx context.Context, loc *models.DropoffLocation) error {
	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// LocationUpdate holds the optional fields of a partial update.
type LocationUpdate struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
}

func (s *Store) UpdateLocation(ctx context.Context, id uint, p LocationUpdate) (*models.DropoffLocation, error) {
	loc, err := s.FindLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.Latitude != nil {
		cols["latitude"] = *p.Latitude
	}
	if p.Longitude != nil {
		cols["longitude"] = *p.Longitude
	}
	if len(cols) == 0 {
		return loc, nil
	}
	if err := s.db.WithContext(ctx).Model(loc).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	return s.FindLocation(ctx, id)
}

func (s *Store) DeleteLocation(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.DropoffLocation{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedLocations inserts the defaults whose names are not present yet and
// returns how many were added.
func (s *Store) SeedLocations(ctx context.Context, defaults []models.DropoffLocation) (int, error) {
	added := 0
	for i := range defaults {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.DropoffLocation{}).
			Where("name = ?", defaults[i].Name).Count(&count).Error; err != nil {
			return added, fmt.Errorf("failed to check location: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := s.CreateLocation(ctx, &defaults[i]); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
