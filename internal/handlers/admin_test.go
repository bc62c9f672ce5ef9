package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ystore/marketplace/internal/models"
)

func seedOrders(t *testing.T, env *testEnv, userID uint) {
	t.Helper()
	for i, o := range []models.Order{
		{Status: models.OrderDelivered, Total: 100.50},
		{Status: models.OrderDelivered, Total: 200},
		{Status: models.OrderPending, Total: 999},
		{Status: models.OrderCancelled, Total: 50},
	} {
		o.OrderNumber = pathID(uint(i + 1))
		o.UserID = userID
		o.Subtotal = o.Total
		require.NoError(t, env.DB.Create(&o).Error)
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)
	seedOrders(t, env, buyer.ID)

	rec, c := env.requestAs(admin, http.MethodGet, "/api/v1/admin/stats", nil)
	require.NoError(t, env.Admin.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[struct {
		TotalRevenue  float64 `json:"total_revenue"`
		TotalOrders   int64   `json:"total_orders"`
		TotalUsers    int64   `json:"total_users"`
		PendingOrders int64   `json:"pending_orders"`
	}](t, rec)

	// only delivered orders count toward revenue
	require.Equal(t, 300.50, resp.TotalRevenue)
	require.Equal(t, int64(4), resp.TotalOrders)
	require.Equal(t, int64(2), resp.TotalUsers)
	require.Equal(t, int64(1), resp.PendingOrders)
}

func TestUpdateUserRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	user := env.createUser("user@example.com", models.RoleCustomer)

	update := func(id uint, role string) int {
		rec, c := env.requestAs(admin, http.MethodPut, "/api/v1/admin/users/1/role",
			map[string]any{"role": role})
		c.SetParamNames("id")
		c.SetParamValues(pathID(id))
		require.NoError(t, env.Admin.UpdateUserRole(c))
		return rec.Code
	}

	require.Equal(t, http.StatusBadRequest, update(user.ID, "superuser"))
	require.Equal(t, http.StatusNotFound, update(9999, models.RoleSeller))
	require.Equal(t, http.StatusOK, update(user.ID, models.RoleSeller))

	var stored models.User
	require.NoError(t, env.DB.First(&stored, user.ID).Error)
	require.Equal(t, models.RoleSeller, stored.Role)
}

func TestRevenueAnalytics(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)
	seedOrders(t, env, buyer.ID)

	rec, c := env.requestAs(admin, http.MethodGet, "/api/v1/admin/analytics/revenue", nil)
	require.NoError(t, env.Admin.RevenueAnalytics(c))
	require.Equal(t, http.StatusOK, rec.Code)

	points := decode[[]struct {
		Date    string  `json:"date"`
		Revenue float64 `json:"revenue"`
	}](t, rec)
	require.Len(t, points, 1)
	require.Equal(t, time.Now().Format("2006-01-02"), points[0].Date)
	require.Equal(t, 300.50, points[0].Revenue)
}

func TestTopProducts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)

	seq := 0
	orderID := func(status string) uint {
		seq++
		order := models.Order{
			OrderNumber: pathID(uint(seq)),
			UserID:      buyer.ID, Subtotal: 1, Total: 1, Status: status,
		}
		require.NoError(t, env.DB.Create(&order).Error)
		return order.ID
	}
	delivered := orderID(models.OrderDelivered)
	pending := orderID(models.OrderPending)
	cancelled := orderID(models.OrderCancelled)

	for _, it := range []models.OrderItem{
		{OrderID: delivered, ProductID: 1, Title: "Kettle", Price: 100, Quantity: 2},
		{OrderID: pending, ProductID: 1, Title: "Kettle", Price: 100, Quantity: 3},
		{OrderID: pending, ProductID: 2, Title: "Mug", Price: 25, Quantity: 1},
		// a cancelled order is not a sale
		{OrderID: cancelled, ProductID: 2, Title: "Mug", Price: 25, Quantity: 40},
	} {
		require.NoError(t, env.DB.Create(&it).Error)
	}

	rec, c := env.requestAs(admin, http.MethodGet, "/api/v1/admin/analytics/top-products?limit=1", nil)
	require.NoError(t, env.Admin.TopProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	top := decode[[]struct {
		ProductID uint    `json:"product_id"`
		TotalSold uint    `json:"total_sold"`
		Revenue   float64 `json:"revenue"`
	}](t, rec)
	require.Len(t, top, 1)
	require.Equal(t, uint(1), top[0].ProductID)
	require.Equal(t, uint(5), top[0].TotalSold)
	require.Equal(t, 500.0, top[0].Revenue)
}

func TestCategoryDistribution(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)
	seller := env.createUser("seller@example.com", models.RoleSeller)

	kitchen := env.createCategory("Kitchen")
	audio := env.createCategory("Audio")
	kettle := env.createProduct(seller, kitchen, "Kettle", 100, 50)
	mug := env.createProduct(seller, kitchen, "Mug", 25, 50)
	speaker := env.createProduct(seller, audio, "Speaker", 2000, 10)

	live := models.Order{OrderNumber: "n-1", UserID: buyer.ID, Subtotal: 1, Total: 1, Status: models.OrderDelivered}
	dead := models.Order{OrderNumber: "n-2", UserID: buyer.ID, Subtotal: 1, Total: 1, Status: models.OrderCancelled}
	require.NoError(t, env.DB.Create(&live).Error)
	require.NoError(t, env.DB.Create(&dead).Error)

	for _, it := range []models.OrderItem{
		{OrderID: live.ID, ProductID: kettle.ID, Title: "Kettle", Price: 100, Quantity: 2},
		{OrderID: live.ID, ProductID: mug.ID, Title: "Mug", Price: 25, Quantity: 4},
		{OrderID: live.ID, ProductID: speaker.ID, Title: "Speaker", Price: 2000, Quantity: 1},
		{OrderID: dead.ID, ProductID: speaker.ID, Title: "Speaker", Price: 2000, Quantity: 5},
	} {
		require.NoError(t, env.DB.Create(&it).Error)
	}

	rec, c := env.requestAs(admin, http.MethodGet, "/api/v1/admin/analytics/categories", nil)
	require.NoError(t, env.Admin.CategoryDistribution(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sales := decode[[]struct {
		CategoryID   uint    `json:"category_id"`
		CategoryName string  `json:"category_name"`
		TotalSold    uint    `json:"total_sold"`
		Revenue      float64 `json:"revenue"`
	}](t, rec)
	require.Len(t, sales, 2)

	// sorted by revenue, cancelled order excluded
	require.Equal(t, "Audio", sales[0].CategoryName)
	require.Equal(t, uint(1), sales[0].TotalSold)
	require.Equal(t, 2000.0, sales[0].Revenue)
	require.Equal(t, "Kitchen", sales[1].CategoryName)
	require.Equal(t, uint(6), sales[1].TotalSold)
	require.Equal(t, 300.0, sales[1].Revenue)
}

func TestOrderStatusDistribution(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	buyer := env.createUser("buyer@example.com", models.RoleCustomer)
	seedOrders(t, env, buyer.ID)

	rec, c := env.requestAs(admin, http.MethodGet, "/api/v1/admin/analytics/order-status", nil)
	require.NoError(t, env.Admin.OrderStatusDistribution(c))

	dist := decode[map[string]int64](t, rec)
	require.Equal(t, int64(2), dist[models.OrderDelivered])
	require.Equal(t, int64(1), dist[models.OrderPending])
	require.Equal(t, int64(1), dist[models.OrderCancelled])
	// the full status set is always present
	require.Len(t, dist, len(models.OrderStatuses))
}
