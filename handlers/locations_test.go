package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"ride-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropoffLocations(t *testing.T) {
	env := newEnv(t)
	_, token := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")
	const base = "/api/locations/dropoff-locations"

	status, body := env.do(t, http.MethodPost, base, token, map[string]any{"name": "Library", "address": "1 Campus Rd"})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")

	status, _ = env.do(t, http.MethodPost, base, token, map[string]any{"name": "Pole", "address": "North", "latitude": 91.5, "longitude": 0})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, base, token, map[string]any{"name": "Library", "address": "1 Campus Rd", "latitude": 0, "longitude": 77.5})
	require.Equal(t, http.StatusCreated, status, body)
	id := idOf(t, body["location"].(map[string]any), "id")

	status, _ = env.do(t, http.MethodPost, base, token, map[string]any{"name": "Airport", "address": "Terminal 3", "latitude": 28.55, "longitude": 77.1})
	require.Equal(t, http.StatusCreated, status)

	status, body = env.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, status)
	locations := body["locations"].([]any)
	require.Len(t, locations, 2)
	assert.Equal(t, "Airport", locations[0].(map[string]any)["name"])

	path := fmt.Sprintf("%s/%d", base, id)
	status, body = env.do(t, http.MethodPut, path, token, map[string]any{"address": "2 Campus Rd"})
	require.Equal(t, http.StatusOK, status)
	loc := body["location"].(map[string]any)
	assert.Equal(t, "2 Campus Rd", loc["address"])
	assert.Equal(t, "Library", loc["name"])

	status, _ = env.do(t, http.MethodPut, path, token, map[string]any{"longitude": 200})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodPut, path, token, map[string]any{"name": "Gone"})
	assert.Equal(t, http.StatusNotFound, status)
}
