package token

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/models"
)

func newService(t *testing.T) *TokenService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))

	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	svc := newService(t)

	access, err := svc.SignAccessToken(1, models.RoleCustomer)
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(access)
	require.Error(t, err)
}

func TestRotateRevokesOldToken(t *testing.T) {
	svc := newService(t)

	refresh, err := svc.SignRefreshToken(42, models.RoleSeller)
	require.NoError(t, err)
	require.NoError(t, svc.SaveRefreshToken(refresh, 42, models.RoleSeller))

	access, newRefresh, err := svc.RotateToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEqual(t, refresh, newRefresh)

	_, _, err = svc.RotateToken(refresh)
	require.Error(t, err)

	// the replacement still works
	_, _, err = svc.RotateToken(newRefresh)
	require.NoError(t, err)
}

func TestValidateRefreshUnknownToken(t *testing.T) {
	svc := newService(t)

	// well signed but never saved
	refresh, err := svc.SignRefreshToken(7, models.RoleCustomer)
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(refresh)
	require.ErrorContains(t, err, "not found")
}

func TestRequireAuth(t *testing.T) {
	svc := newService(t)
	e := echo.New()

	handler := svc.RequireAuth(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": UserID(c),
			"role":    Role(c),
		})
	})

	call := func(authHeader string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authHeader != "" {
			req.Header.Set(echo.HeaderAuthorization, authHeader)
		}
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	access, err := svc.SignAccessToken(42, models.RoleAdmin)
	require.NoError(t, err)

	rec, err := call("Bearer " + access)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":42`)
	require.Contains(t, rec.Body.String(), `"role":"admin"`)

	assertUnauthorized := func(header string) {
		_, err := call(header)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		require.Equal(t, http.StatusUnauthorized, he.Code)
	}

	assertUnauthorized("")
	assertUnauthorized("Token " + access)
	assertUnauthorized("Bearer garbage")

	// a refresh token must not pass as an access token
	refresh, err := svc.SignRefreshToken(42, models.RoleAdmin)
	require.NoError(t, err)
	assertUnauthorized("Bearer " + refresh)
}

func TestRequireRole(t *testing.T) {
	svc := newService(t)
	e := echo.New()

	handler := svc.RequireRole(models.RoleSeller, models.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func(role string) error {
		access, err := svc.SignAccessToken(1, role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	require.NoError(t, call(models.RoleSeller))
	require.NoError(t, call(models.RoleAdmin))

	err := call(models.RoleCustomer)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusForbidden, he.Code)
}
