package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/payments"
	"github.com/ystore/marketplace/internal/service/token"
)

type CheckoutHandler struct {
	DB            *gorm.DB
	Payments      *payments.Client
	PublicBaseURL string
}

// CreateSession asks the payment provider for a hosted checkout page for an
// order and hands the redirect URL back to the storefront.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	if h.Payments == nil || !h.Payments.Configured() {
		return errorMessage(c, http.StatusServiceUnavailable, "payment service not configured")
	}

	var req struct {
		OrderID uint `json:"order_id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var order models.Order
	if err := h.DB.First(&order, req.OrderID).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "order not found")
	}
	if order.UserID != token.UserID(c) {
		return errorMessage(c, http.StatusForbidden, "not your order")
	}
	if order.PaymentStatus == models.PaymentPaid {
		return errorMessage(c, http.StatusConflict, "order already paid")
	}

	externalID := uuid.NewString()
	result, err := h.Payments.CreatePayment(c.Request().Context(), payments.CreateRequest{
		Amount:      order.Total,
		Currency:    order.Currency,
		ExternalID:  externalID,
		Description: fmt.Sprintf("Order %s", order.OrderNumber),
		CallbackURL: h.PublicBaseURL + "/api/v1/payments/callback",
	})
	if err != nil {
		c.Logger().Errorf("payment session error: %v", err)
		return errorMessage(c, http.StatusBadGateway, "payment service error")
	}

	payment := models.Payment{
		ExternalID: externalID,
		OrderID:    order.ID,
		Amount:     order.Total,
		Status:     models.PaymentPending,
		ProviderID: result.ProviderID,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id":   externalID,
		"checkout_url": result.CheckoutURL,
		"status":       models.PaymentPending,
	})
}

// Callback is the provider webhook. A successful payment marks the order
// paid, a failed one marks it failed; anything else only updates the
// payment record.
func (h *CheckoutHandler) Callback(c echo.Context) error {
	var body payments.Callback
	if err := c.Bind(&body); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if body.ExternalID == "" {
		return errorMessage(c, http.StatusBadRequest, "external_id is required")
	}

	var payment models.Payment
	if err := h.DB.Where("external_id = ?", body.ExternalID).First(&payment).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "payment not found")
	}

	payment.Status = body.Status
	if err := h.DB.Save(&payment).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var orderStatus string
	switch body.Status {
	case "success":
		orderStatus = models.PaymentPaid
	case "failure", "failed":
		orderStatus = models.PaymentFailed
	}
	if orderStatus != "" {
		if err := h.DB.Model(&models.Order{}).
			Where("id = ?", payment.OrderID).
			Update("payment_status", orderStatus).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *CheckoutHandler) GetPayment(c echo.Context) error {
	var payment models.Payment
	if err := h.DB.Where("external_id = ?", c.Param("id")).First(&payment).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "payment not found")
	}

	// no owning order means no way to establish ownership
	var order models.Order
	if err := h.DB.First(&order, payment.OrderID).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "payment not found")
	}
	if token.Role(c) != models.RoleAdmin && order.UserID != token.UserID(c) {
		return errorMessage(c, http.StatusForbidden, "not authorized")
	}

	return c.JSON(http.StatusOK, payment)
}
