package store

import (
	"context"
	"testing"

	"ride-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loc := &models.DropoffLocation{Name: "Library", Address: "1 Campus Rd", Latitude: 28.45, Longitude: 77.58}
	require.NoError(t, s.CreateLocation(ctx, loc))
	require.NotZero(t, loc.ID)

	name := "Central Library"
	updated, err := s.UpdateLocation(ctx, loc.ID, LocationUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Central Library", updated.Name)
	assert.Equal(t, "1 Campus Rd", updated.Address)

	require.NoError(t, s.DeleteLocation(ctx, loc.ID))
	assert.ErrorIs(t, s.DeleteLocation(ctx, loc.ID), ErrNotFound)
	_, err = s.UpdateLocation(ctx, loc.ID, LocationUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedLocationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SeedLocations(ctx, models.DefaultDropoffLocations())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.SeedLocations(ctx, models.DefaultDropoffLocations())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	list, err := s.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Airport Terminal", list[0].Name)
	assert.Equal(t, "Main Train Station", list[2].Name)
}
