package handlers

import (
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/models"
)

// AdminHandler backs the admin console dashboard: headline stats plus the
// analytics charts. Aggregation happens in Go over plain selects so the same
// queries run on postgres and the sqlite test database.
type AdminHandler struct {
	DB *gorm.DB
}

func (h *AdminHandler) Stats(c echo.Context) error {
	var delivered []models.Order
	if err := h.DB.Where("status = ?", models.OrderDelivered).Find(&delivered).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	var totalRevenue float64
	for _, o := range delivered {
		totalRevenue += o.Total
	}

	var totalOrders, totalUsers, totalProducts, pendingOrders, newUsersToday int64
	h.DB.Model(&models.Order{}).Count(&totalOrders)
	h.DB.Model(&models.User{}).Count(&totalUsers)
	h.DB.Model(&models.Product{}).Count(&totalProducts)
	h.DB.Model(&models.Order{}).Where("status = ?", models.OrderPending).Count(&pendingOrders)

	today := time.Now().Truncate(24 * time.Hour)
	h.DB.Model(&models.User{}).Where("created_at >= ?", today).Count(&newUsersToday)

	return c.JSON(http.StatusOK, echo.Map{
		"total_revenue":   math.Round(totalRevenue*100) / 100,
		"total_orders":    totalOrders,
		"total_users":     totalUsers,
		"total_products":  totalProducts,
		"pending_orders":  pendingOrders,
		"new_users_today": newUsersToday,
	})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	type userListItem struct {
		models.User
		OrdersCount int64 `json:"orders_count"`
	}
	resp := make([]userListItem, len(users))
	for i, u := range users {
		resp[i] = userListItem{User: u}
		h.DB.Model(&models.Order{}).Where("user_id = ?", u.ID).Count(&resp[i].OrdersCount)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	switch req.Role {
	case models.RoleCustomer, models.RoleSeller, models.RoleAdmin:
	default:
		return errorMessage(c, http.StatusBadRequest, "invalid role")
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if result.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorMessage(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

// RevenueAnalytics buckets delivered-order revenue per calendar day over the
// requested window.
func (h *AdminHandler) RevenueAnalytics(c echo.Context) error {
	days := parseIntDefault(c.QueryParam("days"), 30)
	since := time.Now().AddDate(0, 0, -days)

	var orders []models.Order
	if err := h.DB.
		Where("status = ? AND created_at >= ?", models.OrderDelivered, since).
		Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	byDay := make(map[string]float64)
	for _, o := range orders {
		byDay[o.CreatedAt.Format("2006-01-02")] += o.Total
	}

	type revenuePoint struct {
		Date    string  `json:"date"`
		Revenue float64 `json:"revenue"`
	}
	points := make([]revenuePoint, 0, len(byDay))
	for date, revenue := range byDay {
		points = append(points, revenuePoint{Date: date, Revenue: math.Round(revenue*100) / 100})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return c.JSON(http.StatusOK, points)
}

// soldItems loads order items excluding those of cancelled orders, so a
// cancelled purchase never counts as a sale.
func (h *AdminHandler) soldItems() ([]models.OrderItem, error) {
	var orderIDs []uint
	if err := h.DB.Model(&models.Order{}).
		Where("status <> ?", models.OrderCancelled).
		Pluck("id", &orderIDs).Error; err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var items []models.OrderItem
	if err := h.DB.Where("order_id IN ?", orderIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (h *AdminHandler) TopProducts(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), 10)

	items, err := h.soldItems()
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	type topProduct struct {
		ProductID   uint    `json:"product_id"`
		ProductName string  `json:"product_name"`
		TotalSold   uint    `json:"total_sold"`
		Revenue     float64 `json:"revenue"`
	}
	byProduct := make(map[uint]*topProduct)
	for _, it := range items {
		tp := byProduct[it.ProductID]
		if tp == nil {
			tp = &topProduct{ProductID: it.ProductID, ProductName: it.Title}
			byProduct[it.ProductID] = tp
		}
		tp.TotalSold += it.Quantity
		tp.Revenue += it.Price * float64(it.Quantity)
	}

	top := make([]topProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		tp.Revenue = math.Round(tp.Revenue*100) / 100
		top = append(top, *tp)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].TotalSold > top[j].TotalSold })
	if len(top) > limit {
		top = top[:limit]
	}

	return c.JSON(http.StatusOK, top)
}

// CategoryDistribution is sales volume and revenue per catalog category.
func (h *AdminHandler) CategoryDistribution(c echo.Context) error {
	items, err := h.soldItems()
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var products []models.Product
	if err := h.DB.Select("id", "category_id").Find(&products).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	categoryOf := make(map[uint]uint, len(products))
	for _, p := range products {
		categoryOf[p.ID] = p.CategoryID
	}

	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	nameOf := make(map[uint]string, len(categories))
	for _, cat := range categories {
		nameOf[cat.ID] = cat.Name
	}

	type categorySales struct {
		CategoryID   uint    `json:"category_id"`
		CategoryName string  `json:"category_name"`
		TotalSold    uint    `json:"total_sold"`
		Revenue      float64 `json:"revenue"`
	}
	byCategory := make(map[uint]*categorySales)
	for _, it := range items {
		catID, ok := categoryOf[it.ProductID]
		if !ok {
			continue
		}
		cs := byCategory[catID]
		if cs == nil {
			cs = &categorySales{CategoryID: catID, CategoryName: nameOf[catID]}
			byCategory[catID] = cs
		}
		cs.TotalSold += it.Quantity
		cs.Revenue += it.Price * float64(it.Quantity)
	}

	sales := make([]categorySales, 0, len(byCategory))
	for _, cs := range byCategory {
		cs.Revenue = math.Round(cs.Revenue*100) / 100
		sales = append(sales, *cs)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Revenue > sales[j].Revenue })

	return c.JSON(http.StatusOK, sales)
}

func (h *AdminHandler) OrderStatusDistribution(c echo.Context) error {
	distribution := make(map[string]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		var count int64
		if err := h.DB.Model(&models.Order{}).Where("status = ?", status).Count(&count).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
		distribution[status] = count
	}
	return c.JSON(http.StatusOK, distribution)
}

func (h *AdminHandler) UserGrowth(c echo.Context) error {
	days := parseIntDefault(c.QueryParam("days"), 30)
	since := time.Now().AddDate(0, 0, -days)

	var users []models.User
	if err := h.DB.Where("created_at >= ?", since).Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	byDay := make(map[string]int)
	for _, u := range users {
		byDay[u.CreatedAt.Format("2006-01-02")]++
	}

	type growthPoint struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	points := make([]growthPoint, 0, len(byDay))
	for date, count := range byDay {
		points = append(points, growthPoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return c.JSON(http.StatusOK, points)
}
