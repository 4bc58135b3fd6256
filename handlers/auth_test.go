package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrandt-dev/klassenvote-backend/config"
	"github.com/mbrandt-dev/klassenvote-backend/handlers"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/testutil"
)

const testJWTSecret = "test-secret"

func login(t *testing.T, ah *handlers.AuthHandler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(handlers.LoginPayload{Username: username, Password: password}))
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", &body)
	rec := httptest.NewRecorder()
	ah.Login(rec, req)
	return rec
}

func TestLoginAndAuthMiddleware(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewGormUserRepository(db)

	admin := &models.User{Username: "admin"}
	require.NoError(t, admin.SetPassword("admin123"))
	require.NoError(t, db.Create(admin).Error)

	cfg := config.Config{JWTSecret: testJWTSecret, JWTExpirationHours: 1}
	ah := handlers.NewAuthHandler(userRepo, cfg)

	rec := login(t, ah, "admin", "admin123")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Username)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// the issued token passes the middleware and puts the user in context
	var gotUser *models.User
	protected := handlers.AuthMiddleware(userRepo, testJWTSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = r.Context().Value(handlers.UserContextKey).(*models.User)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/codes", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, admin.ID, gotUser.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewGormUserRepository(db)

	admin := &models.User{Username: "admin"}
	require.NoError(t, admin.SetPassword("admin123"))
	require.NoError(t, db.Create(admin).Error)

	ah := handlers.NewAuthHandler(userRepo, config.Config{JWTSecret: testJWTSecret, JWTExpirationHours: 1})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "nope"},
		{"unknown user", "ghost", "admin123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := login(t, ah, tt.username, tt.password)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewGormUserRepository(db)

	protected := handlers.AuthMiddleware(userRepo, testJWTSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/codes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
