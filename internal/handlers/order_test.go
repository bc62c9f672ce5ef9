package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ystore/marketplace/internal/models"
)

var shippingBody = map[string]any{
	"shipping": map[string]any{
		"street":      "Khreshchatyk 1",
		"city":        "Kyiv",
		"state":       "Kyiv Oblast",
		"postal_code": "01001",
		"country":     "Ukraine",
	},
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer@example.com", models.RoleCustomer)

	_, c := env.requestAs(user, http.MethodPost, "/api/v1/orders", shippingBody)
	err := env.Orders.CreateOrder(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "cart is empty", he.Message)
}

func TestCreateOrderMissingAddress(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer@example.com", models.RoleCustomer)

	rec, c := env.requestAs(user, http.MethodPost, "/api/v1/orders", map[string]any{
		"shipping": map[string]any{"city": "Kyiv"},
	})
	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// every address field is mandatory, state included
	withoutState := map[string]any{
		"shipping": map[string]any{
			"street":      "Khreshchatyk 1",
			"city":        "Kyiv",
			"postal_code": "01001",
			"country":     "Ukraine",
		},
	}
	rec, c = env.requestAs(user, http.MethodPost, "/api/v1/orders", withoutState)
	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderSnapshotsCart(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)
	seller := env.createUser("seller@example.com", models.RoleSeller)
	cat := env.createCategory("Books")
	book := env.createProduct(seller, cat, "Go Book", 450.50, 10)
	pen := env.createProduct(seller, cat, "Pen", 19.99, 100)

	env.addToCart(buyer, book.ID, 2)
	env.addToCart(buyer, pen.ID, 3)

	// a later price change must not leak into the order
	require.NoError(t, env.DB.Model(book).Update("price", 999).Error)

	rec, c := env.requestAs(buyer, http.MethodPost, "/api/v1/orders", shippingBody)
	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[orderResponse](t, rec)
	require.NotEmpty(t, resp.OrderNumber)
	require.Equal(t, models.OrderPending, resp.Status)
	require.Equal(t, models.PaymentPending, resp.PaymentStatus)
	require.Len(t, resp.Items, 2)
	// 2*450.50 + 3*19.99
	require.Equal(t, 960.97, resp.Subtotal)
	require.Equal(t, resp.Subtotal, resp.Total)

	var stored models.Product
	require.NoError(t, env.DB.First(&stored, book.ID).Error)
	require.Equal(t, 8, stored.StockLevel)
	require.Equal(t, 2, stored.SalesCount)

	var remaining int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).
		Where("user_id = ?", buyer.ID).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)
	seller := env.createUser("seller@example.com", models.RoleSeller)
	cat := env.createCategory("Books")
	book := env.createProduct(seller, cat, "Rare Book", 1200, 1)

	env.addToCart(buyer, book.ID, 2)

	_, c := env.requestAs(buyer, http.MethodPost, "/api/v1/orders", shippingBody)
	err := env.Orders.CreateOrder(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusConflict, he.Code)

	// the transaction rolled back: stock untouched, cart intact
	var stored models.Product
	require.NoError(t, env.DB.First(&stored, book.ID).Error)
	require.Equal(t, 1, stored.StockLevel)

	var remaining int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).
		Where("user_id = ?", buyer.ID).Count(&remaining).Error)
	require.Equal(t, int64(1), remaining)
}

func TestGetOrderOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("owner@example.com", models.RoleCustomer)
	stranger := env.createUser("stranger@example.com", models.RoleCustomer)
	admin := env.createUser("admin@example.com", models.RoleAdmin)

	order := models.Order{OrderNumber: "n-1", UserID: owner.ID, Subtotal: 10, Total: 10, Status: models.OrderPending}
	require.NoError(t, env.DB.Create(&order).Error)

	get := func(as *models.User) int {
		rec, c := env.requestAs(as, http.MethodGet, "/api/v1/orders/1", nil)
		c.SetParamNames("id")
		c.SetParamValues(pathID(order.ID))
		require.NoError(t, env.Orders.GetOrder(c))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, get(owner))
	require.Equal(t, http.StatusForbidden, get(stranger))
	require.Equal(t, http.StatusOK, get(admin))
}

func TestUpdateStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	user := env.createUser("buyer@example.com", models.RoleCustomer)

	order := models.Order{OrderNumber: "n-2", UserID: user.ID, Subtotal: 10, Total: 10, Status: models.OrderPending}
	require.NoError(t, env.DB.Create(&order).Error)

	update := func(status string) int {
		rec, c := env.requestAs(admin, http.MethodPut, "/api/v1/admin/orders/1/status",
			map[string]any{"status": status})
		c.SetParamNames("id")
		c.SetParamValues(pathID(order.ID))
		require.NoError(t, env.Orders.UpdateStatus(c))
		return rec.Code
	}

	// skipping a step is rejected
	require.Equal(t, http.StatusConflict, update(models.OrderShipped))
	require.Equal(t, http.StatusOK, update(models.OrderConfirmed))
	require.Equal(t, http.StatusOK, update(models.OrderProcessing))
	// going backwards is rejected
	require.Equal(t, http.StatusConflict, update(models.OrderConfirmed))
	// cancel from any non-terminal state
	require.Equal(t, http.StatusOK, update(models.OrderCancelled))
	// terminal states accept nothing
	require.Equal(t, http.StatusConflict, update(models.OrderPending))

	require.Equal(t, http.StatusBadRequest, update("misplaced"))
}

func TestListOrdersStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	user := env.createUser("buyer@example.com", models.RoleCustomer)

	for i, status := range []string{models.OrderPending, models.OrderDelivered, models.OrderPending} {
		order := models.Order{OrderNumber: pathID(uint(i + 1)), UserID: user.ID, Subtotal: 1, Total: 1, Status: status}
		require.NoError(t, env.DB.Create(&order).Error)
	}

	rec, c := env.requestAs(admin, http.MethodGet, "/api/v1/admin/orders?status=pending", nil)
	require.NoError(t, env.Orders.ListOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]orderResponse](t, rec), 2)

	rec, c = env.requestAs(admin, http.MethodGet, "/api/v1/admin/orders?status=bogus", nil)
	require.NoError(t, env.Orders.ListOrders(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
