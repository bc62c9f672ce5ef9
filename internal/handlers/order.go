package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/mykafka"
	"github.com/ystore/marketplace/internal/service/token"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

type shippingAddress struct {
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	NPDepartment string `json:"np_department"`
	Notes        string `json:"notes"`
}

func (s *shippingAddress) validate() error {
	if s.Street == "" || s.City == "" || s.State == "" || s.PostalCode == "" || s.Country == "" {
		return errors.New("street, city, state, postal_code and country are required")
	}
	return nil
}

// CreateOrder snapshots the cart into an immutable order inside one
// transaction: cart lines become order items at their captured price, stock
// is decremented, sales counters move, the cart is cleared.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID := token.UserID(c)

	var req struct {
		Shipping      shippingAddress `json:"shipping"`
		PaymentMethod string          `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := req.Shipping.validate(); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "card"
	}

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		var subtotal float64
		orderItems = make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "product not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			if p.StockLevel < int(it.Quantity) {
				return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("not enough stock for %q", p.Title))
			}

			subtotal += it.Price * float64(it.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: it.ProductID,
				SellerID:  p.SellerID,
				Title:     p.Title,
				Price:     it.Price,
				Quantity:  it.Quantity,
			})

			updates := map[string]any{
				"stock_level": gorm.Expr("stock_level - ?", it.Quantity),
				"sales_count": gorm.Expr("sales_count + ?", it.Quantity),
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}

		subtotal = math.Round(subtotal*100) / 100
		order = models.Order{
			OrderNumber:   uuid.NewString(),
			UserID:        userID,
			Street:        req.Shipping.Street,
			City:          req.Shipping.City,
			State:         req.Shipping.State,
			PostalCode:    req.Shipping.PostalCode,
			Country:       req.Shipping.Country,
			NPDepartment:  req.Shipping.NPDepartment,
			Notes:         req.Shipping.Notes,
			Subtotal:      subtotal,
			ShippingCost:  0,
			Total:         subtotal,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			PaymentMethod: req.PaymentMethod,
		}
		if err := tx.Create(&order).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
			if err := tx.Create(&orderItems[i]).Error; err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return nil
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return errorResponse(c, http.StatusInternalServerError, txErr)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusCreated, orderResponse{Order: order, Items: orderItems})
}

type orderResponse struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

func (h *OrderHandler) loadItems(orders []models.Order) (map[uint][]models.OrderItem, error) {
	if len(orders) == 0 {
		return map[uint][]models.OrderItem{}, nil
	}
	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	var items []models.OrderItem
	if err := h.DB.Where("order_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[uint][]models.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	return byOrder, nil
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID := token.UserID(c)

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	byOrder, err := h.loadItems(orders)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = orderResponse{Order: o, Items: byOrder[o.ID]}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "order not found")
	}
	if token.Role(c) != models.RoleAdmin && order.UserID != token.UserID(c) {
		return errorMessage(c, http.StatusForbidden, "not authorized")
	}

	var items []models.OrderItem
	if err := h.DB.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, orderResponse{Order: order, Items: items})
}

// ListOrders is the admin console view, optionally filtered by status.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	q := h.DB.Model(&models.Order{}).Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			return errorMessage(c, http.StatusBadRequest, "invalid status")
		}
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	byOrder, err := h.loadItems(orders)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = orderResponse{Order: o, Items: byOrder[o.ID]}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if !models.ValidOrderStatus(req.Status) {
		return errorMessage(c, http.StatusBadRequest, "invalid status")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "order not found")
	}

	if !models.CanTransition(order.Status, req.Status) {
		return errorMessage(c, http.StatusConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}

	order.Status = req.Status
	if err := h.DB.Save(&order).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":    "order_status_changed",
		"userID":  order.UserID,
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, order)
}
