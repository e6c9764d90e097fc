package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"ride-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/admin/users/%d%s", id, suffix)
}

func TestTierGates(t *testing.T) {
	env := newEnv(t)
	_, userToken := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	_, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")
	_, primeToken := env.seed(t, "prime@example.com", models.RolePrimeAdmin, "Secret123")

	adminOnly := []string{"/api/admin/users", "/api/locations/dropoff-locations"}
	for _, path := range adminOnly {
		status, body := env.do(t, http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		assert.Equal(t, "forbidden", body["code"])

		status, _ = env.do(t, http.MethodGet, path, adminToken, nil)
		assert.Equal(t, http.StatusOK, status, path)
		status, _ = env.do(t, http.MethodGet, path, primeToken, nil)
		assert.Equal(t, http.StatusOK, status, path)
	}

	status, body := env.do(t, http.MethodGet, "/api/admin/admins", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])
	status, body = env.do(t, http.MethodGet, "/api/admin/admins", primeToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
}

func TestAdminListAndGetUsers(t *testing.T) {
	env := newEnv(t)
	u, _ := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	env.seed(t, "b@bennett.edu.in", models.RoleUser, "Secret123")
	_, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")

	status, body := env.do(t, http.MethodGet, "/api/admin/users?role=user", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, _ = env.do(t, http.MethodGet, "/api/admin/users?role=superuser", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, userPath(u.ID, ""), adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@bennett.edu.in", user["email"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "otpCode")
	assert.Equal(t, []any{"admin"}, body["allowedRoles"])

	status, _ = env.do(t, http.MethodGet, userPath(12345678, ""), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodGet, "/api/admin/users/abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminUpdateUser(t *testing.T) {
	env := newEnv(t)
	u, _ := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	env.seed(t, "b@bennett.edu.in", models.RoleUser, "Secret123")
	peer, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")
	env.seed(t, "ops2@example.com", models.RoleAdmin, "Secret123")
	_, primeToken := env.seed(t, "prime@example.com", models.RolePrimeAdmin, "Secret123")

	status, body := env.do(t, http.MethodPut, userPath(u.ID, ""), adminToken, map[string]any{"lastName": "Changed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Changed", body["user"].(map[string]any)["lastName"])
	assert.Equal(t, true, body["user"].(map[string]any)["isVerified"])

	status, _ = env.do(t, http.MethodPut, userPath(u.ID, ""), adminToken, map[string]any{"email": "b@bennett.edu.in"})
	assert.Equal(t, http.StatusConflict, status)
	status, _ = env.do(t, http.MethodPut, userPath(u.ID, ""), adminToken, map[string]any{"email": "a@gmail.com"})
	assert.Equal(t, http.StatusBadRequest, status)

	other, err := env.store.FindByEmail(context.Background(), "ops2@example.com")
	require.NoError(t, err)
	status, _ = env.do(t, http.MethodPut, userPath(other.ID, ""), adminToken, map[string]any{"firstName": "Peer"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPut, userPath(peer.ID, ""), primeToken, map[string]any{"firstName": "Promoted"})
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminCannotUnverifyAccount(t *testing.T) {
	env := newEnv(t)
	u, userToken := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	_, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")

	status, body := env.do(t, http.MethodPut, userPath(u.ID, ""), adminToken, map[string]any{"isVerified": false, "lastName": "Changed"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "isVerified")

	got, err := env.store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Equal(t, "Account", got.LastName)

	status, _ = env.do(t, http.MethodGet, "/api/users/profile", userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "a@bennett.edu.in", "password": "Secret123"})
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminForcesVerification(t *testing.T) {
	env := newEnv(t)
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", register("new@bennett.edu.in"))
	require.Equal(t, http.StatusCreated, status)
	id := idOf(t, body, "userId")
	_, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")

	status, body = env.do(t, http.MethodPut, userPath(id, ""), adminToken, map[string]any{"isVerified": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["user"].(map[string]any)["isVerified"])
}

func TestDemotedAdminTokenLosesAccess(t *testing.T) {
	env := newEnv(t)
	u, _ := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	admin, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")
	_, primeToken := env.seed(t, "prime@example.com", models.RolePrimeAdmin, "Secret123")

	status, _ := env.do(t, http.MethodPut, userPath(admin.ID, "/role"), primeToken, map[string]any{"role": "user"})
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])

	status, _ = env.do(t, http.MethodPut, userPath(u.ID, "/credits"), adminToken, map[string]any{"credits": 99999})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodGet, "/api/locations/dropoff-locations", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	got, err := env.store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, got.Credits)
}

func TestAdminDeleteUser(t *testing.T) {
	env := newEnv(t)
	u, _ := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	admin, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")
	peer, _ := env.seed(t, "ops2@example.com", models.RoleAdmin, "Secret123")
	prime, primeToken := env.seed(t, "prime@example.com", models.RolePrimeAdmin, "Secret123")

	status, _ := env.do(t, http.MethodDelete, userPath(admin.ID, ""), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "self")
	status, _ = env.do(t, http.MethodDelete, userPath(peer.ID, ""), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "peer admin")

	for _, token := range []string{adminToken, primeToken} {
		status, _ = env.do(t, http.MethodDelete, userPath(prime.ID, ""), token, nil)
		assert.Equal(t, http.StatusForbidden, status, "prime admin")
	}

	status, _ = env.do(t, http.MethodDelete, userPath(u.ID, ""), adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, userPath(u.ID, ""), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodDelete, userPath(peer.ID, ""), primeToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminChangeRole(t *testing.T) {
	env := newEnv(t)
	u, userToken := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	admin, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")
	prime, primeToken := env.seed(t, "prime@example.com", models.RolePrimeAdmin, "Secret123")

	status, _ := env.do(t, http.MethodPut, userPath(u.ID, "/role"), adminToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status, "admin cannot change roles")

	status, _ = env.do(t, http.MethodPut, userPath(prime.ID, "/role"), primeToken, map[string]any{"role": "user"})
	assert.Equal(t, http.StatusForbidden, status, "self change")

	status, _ = env.do(t, http.MethodPut, userPath(admin.ID, "/role"), primeToken, map[string]any{"role": "prime_admin"})
	assert.Equal(t, http.StatusForbidden, status, "second prime admin")

	status, _ = env.do(t, http.MethodPut, userPath(u.ID, "/role"), primeToken, map[string]any{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := env.do(t, http.MethodPut, userPath(u.ID, "/role"), primeToken, map[string]any{"role": "user"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Role unchanged", body["message"])

	status, body = env.do(t, http.MethodPut, userPath(u.ID, "/role"), primeToken, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["user"].(map[string]any)["role"])

	got, err := env.store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	// the old standard-tier token still carries role=user
	status, _ = env.do(t, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	prime2, err := env.store.FindPrimeAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prime.ID, prime2.ID)
}

func TestAdminCredits(t *testing.T) {
	env := newEnv(t)
	u, userToken := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	admin, adminToken := env.seed(t, "ops@example.com", models.RoleAdmin, "Secret123")

	status, body := env.do(t, http.MethodPut, userPath(u.ID, "/credits"), adminToken, map[string]any{"credits": 320, "reason": "late cancellation"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(320), body["credits"])
	adj := body["adjustment"].(map[string]any)
	assert.Equal(t, float64(500), adj["previousCredits"])
	assert.Equal(t, float64(admin.ID), adj["actorId"])

	status, _ = env.do(t, http.MethodPut, userPath(u.ID, "/credits"), adminToken, map[string]any{"credits": -5})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, userPath(u.ID, "/credits"), adminToken, map[string]any{"reason": "missing amount"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, userPath(admin.ID, "/credits"), adminToken, map[string]any{"credits": 10})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, userPath(12345678, "/credits"), adminToken, map[string]any{"credits": 10})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, userPath(u.ID, "/credits/history"), adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = env.do(t, http.MethodGet, "/api/users/credits/history", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(320), body["credits"])
	assert.Equal(t, float64(1), body["count"])
}

func TestAdminRoster(t *testing.T) {
	env := newEnv(t)
	u, _ := env.seed(t, "a@bennett.edu.in", models.RoleUser, "Secret123")
	prime, primeToken := env.seed(t, "prime@example.com", models.RolePrimeAdmin, "Secret123")

	status, body := env.do(t, http.MethodPost, "/api/admin/admins", primeToken, register("ops@example.com"))
	require.Equal(t, http.StatusCreated, status, body)
	created := body["user"].(map[string]any)
	assert.Equal(t, "admin", created["role"])
	assert.Equal(t, true, created["isVerified"])
	adminID := idOf(t, created, "id")

	status, _ = env.do(t, http.MethodPost, "/api/admin/admins", primeToken, register("ops@example.com"))
	assert.Equal(t, http.StatusConflict, status)

	// the new admin can sign in straight away
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ops@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/admins/%d", u.ID), primeToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/admins/%d", prime.ID), primeToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/admins/%d", adminID), primeToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/api/admin/admins", primeToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])
}
