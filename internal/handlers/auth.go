package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/hash"
	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/mykafka"
	"github.com/ystore/marketplace/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.TokenService
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         models.User `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Email == "" || req.Password == "" {
		return errorMessage(c, http.StatusBadRequest, "email and password are required")
	}

	role := req.Role
	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer, models.RoleSeller:
	default:
		// admin accounts are never self-served
		return errorMessage(c, http.StatusBadRequest, "invalid role")
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return errorMessage(c, http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		FullName:     req.FullName,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return h.issueTokens(c, &user, http.StatusCreated)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return errorMessage(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return errorMessage(c, http.StatusUnauthorized, "invalid credentials")
	}

	h.publish(c, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return h.issueTokens(c, &user, http.StatusOK)
}

func (h *AuthHandler) issueTokens(c echo.Context, user *models.User, code int) error {
	access, err := h.Tokens.SignAccessToken(user.ID, user.Role)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	refresh, err := h.Tokens.SignRefreshToken(user.ID, user.Role)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.Tokens.SaveRefreshToken(refresh, user.ID, user.Role); err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(code, authResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         *user,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.RefreshToken == "" {
		return errorMessage(c, http.StatusBadRequest, "refresh_token is required")
	}

	access, refresh, err := h.Tokens.RotateToken(req.RefreshToken)
	if err != nil {
		return errorMessage(c, http.StatusUnauthorized, "cannot rotate token: "+err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.RefreshToken != "" {
		if err := h.Tokens.Revoke(req.RefreshToken); err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	var user models.User
	if err := h.DB.First(&user, token.UserID(c)).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe merges only the provided fields into the stored profile. The
// stored record stays the source of truth for anything the client omitted.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	var req struct {
		FullName       *string `json:"full_name"`
		Phone          *string `json:"phone"`
		Address        *string `json:"address"`
		City           *string `json:"city"`
		Region         *string `json:"region"`
		PostalCode     *string `json:"postal_code"`
		DeliveryMethod *string `json:"delivery_method"`
		NPDepartment   *string `json:"np_department"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, token.UserID(c)).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "user not found")
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.Region != nil {
		user.Region = *req.Region
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.DeliveryMethod != nil {
		if *req.DeliveryMethod != "" && !models.ValidDeliveryMethod(*req.DeliveryMethod) {
			return errorMessage(c, http.StatusBadRequest, "invalid delivery_method")
		}
		user.DeliveryMethod = *req.DeliveryMethod
	}
	if req.NPDepartment != nil {
		user.NPDepartment = *req.NPDepartment
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":   "user_profile_updated",
		"userID": user.ID,
	})

	return c.JSON(http.StatusOK, user)
}
