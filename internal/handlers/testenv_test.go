package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/config"
	"github.com/ystore/marketplace/internal/handlers/cart"
	"github.com/ystore/marketplace/internal/hash"
	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/service/token"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Tokens   *token.TokenService
	Auth     *AuthHandler
	Products *ProductHandler
	Category *CategoryHandler
	Cart     *cart.CartHandler
	Orders   *OrderHandler
	Content  *ContentHandler
	CRM      *CRMHandler
	Admin    *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Tokens:   tokens,
		Auth:     &AuthHandler{DB: db, Tokens: tokens},
		Products: &ProductHandler{DB: db},
		Category: &CategoryHandler{DB: db},
		Cart:     &cart.CartHandler{DB: db},
		Orders:   &OrderHandler{DB: db},
		Content:  &ContentHandler{DB: db},
		CRM:      &CRMHandler{DB: db},
		Admin:    &AdminHandler{DB: db},
	}
}

func (env *testEnv) request(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// requestAs pre-fills the auth context the way the bearer middleware would.
func (env *testEnv) requestAs(user *models.User, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	rec, c := env.request(method, path, body)
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
	return rec, c
}

func (env *testEnv) createUser(email, role string) *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword("password123")
	require.NoError(env.T, err)

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FullName:     "Test User",
		Role:         role,
	}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

func (env *testEnv) createCategory(name string) *models.Category {
	env.T.Helper()

	category := &models.Category{Name: name, Slug: slugify(name)}
	require.NoError(env.T, env.DB.Create(category).Error)
	return category
}

func (env *testEnv) createProduct(seller *models.User, category *models.Category, title string, price float64, stock int) *models.Product {
	env.T.Helper()

	product := &models.Product{
		SellerID:   seller.ID,
		Title:      title,
		Slug:       slugify(title),
		CategoryID: category.ID,
		Price:      price,
		StockLevel: stock,
		Status:     models.ProductPublished,
	}
	require.NoError(env.T, env.DB.Create(product).Error)
	return product
}

func (env *testEnv) addToCart(user *models.User, productID uint, quantity uint) {
	env.T.Helper()

	rec, c := env.requestAs(user, http.MethodPost, "/api/v1/cart",
		map[string]any{"product_id": productID, "quantity": quantity})
	require.NoError(env.T, env.Cart.AddToCart(c))
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pathID(id uint) string { return fmt.Sprint(id) }
