package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/es"
	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/mykafka"
	"github.com/ystore/marketplace/internal/service/token"
	"github.com/ystore/marketplace/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

// GetProducts serves the public catalog listing. Every filter is applied per
// request; sort changes arrive as new requests with a new sort_by value.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	limit, skip := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		parseIntDefault(c.QueryParam("skip"), 0),
	)

	q := h.DB.Model(&models.Product{}).Where("status = ?", models.ProductPublished)

	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if cat := c.QueryParam("category_id"); cat != "" {
		id, err := strconv.Atoi(cat)
		if err != nil {
			return errorMessage(c, http.StatusBadRequest, "invalid category_id")
		}
		q = q.Where("category_id = ?", id)
	}
	if min := c.QueryParam("min_price"); min != "" {
		v, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return errorMessage(c, http.StatusBadRequest, "invalid min_price")
		}
		q = q.Where("price >= ?", v)
	}
	if max := c.QueryParam("max_price"); max != "" {
		v, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return errorMessage(c, http.StatusBadRequest, "invalid max_price")
		}
		q = q.Where("price <= ?", v)
	}
	if c.QueryParam("bestsellers") == "true" {
		q = q.Where("is_bestseller = ?", true)
	}

	sortBy := c.QueryParam("sort_by")
	if sortBy == "" {
		sortBy = models.SortNewest
	}
	if !models.ValidSortOrder(sortBy) {
		return errorMessage(c, http.StatusBadRequest, "invalid sort_by")
	}
	switch sortBy {
	case models.SortPopularity:
		q = q.Order("sales_count DESC, views_count DESC")
	case models.SortNewest:
		q = q.Order("created_at DESC")
	case models.SortPriceAsc:
		q = q.Order("price ASC")
	case models.SortPriceDesc:
		q = q.Order("price DESC")
	case models.SortRating:
		q = q.Order("rating DESC, reviews_count DESC")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Product
	if err := q.Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":  items,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "product not found")
	}

	// view counter is best effort
	h.DB.Model(&product).UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	product.ViewsCount++

	return c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Title                string                 `json:"title"`
	Description          string                 `json:"description"`
	ShortDescription     string                 `json:"short_description"`
	CategoryID           uint                   `json:"category_id"`
	Price                *float64               `json:"price"`
	ComparePrice         *float64               `json:"compare_price"`
	Currency             string                 `json:"currency"`
	StockLevel           *int                   `json:"stock_level"`
	Images               []string               `json:"images"`
	Specifications       []models.Specification `json:"specifications"`
	Status               string                 `json:"status"`
	InstallmentMonths    *int                   `json:"installment_months"`
	InstallmentAvailable *bool                  `json:"installment_available"`
	IsBestseller         *bool                  `json:"is_bestseller"`
	IsFeatured           *bool                  `json:"is_featured"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Title == "" {
		return errorMessage(c, http.StatusBadRequest, "title is required")
	}
	if req.Price == nil || *req.Price < 0 {
		return errorMessage(c, http.StatusBadRequest, "price must be non-negative")
	}
	if req.StockLevel != nil && *req.StockLevel < 0 {
		return errorMessage(c, http.StatusBadRequest, "stock_level must be non-negative")
	}

	var category models.Category
	if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
		return errorMessage(c, http.StatusBadRequest, "category not found")
	}

	status := req.Status
	if status == "" {
		status = models.ProductDraft
	}
	if status != models.ProductPublished && status != models.ProductDraft {
		return errorMessage(c, http.StatusBadRequest, "invalid status")
	}

	prod := models.Product{
		SellerID:    token.UserID(c),
		Title:       req.Title,
		Slug:        slugify(req.Title),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       *req.Price,
		Status:      status,
	}
	applyProductOptions(&prod, &req)

	if err := h.DB.Create(&prod).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"title":     prod.Title,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "product not found")
	}
	if err := h.authorize(c, &prod); err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Price != nil && *req.Price < 0 {
		return errorMessage(c, http.StatusBadRequest, "price must be non-negative")
	}
	if req.StockLevel != nil && *req.StockLevel < 0 {
		return errorMessage(c, http.StatusBadRequest, "stock_level must be non-negative")
	}

	if req.Title != "" {
		prod.Title = req.Title
		prod.Slug = slugify(req.Title)
	}
	if req.Description != "" {
		prod.Description = req.Description
	}
	if req.CategoryID != 0 {
		prod.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Status != "" {
		if req.Status != models.ProductPublished && req.Status != models.ProductDraft {
			return errorMessage(c, http.StatusBadRequest, "invalid status")
		}
		prod.Status = req.Status
	}
	applyProductOptions(&prod, &req)

	if err := h.DB.Save(&prod).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"title":     prod.Title,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "product not found")
	}
	if err := h.authorize(c, &prod); err != nil {
		return err
	}

	if err := h.DB.Delete(&prod).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := es.DeleteProduct(ctx, h.ES, id); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

// authorize lets a seller touch only their own products; admins touch any.
func (h *ProductHandler) authorize(c echo.Context, p *models.Product) error {
	if token.Role(c) == models.RoleAdmin {
		return nil
	}
	if p.SellerID != token.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your product")
	}
	return nil
}

func applyProductOptions(p *models.Product, req *productRequest) {
	if req.ShortDescription != "" {
		p.ShortDescription = req.ShortDescription
	}
	if req.Currency != "" {
		p.Currency = req.Currency
	}
	if req.ComparePrice != nil {
		p.ComparePrice = req.ComparePrice
	}
	if req.StockLevel != nil {
		p.StockLevel = *req.StockLevel
	}
	if req.Images != nil {
		p.Images = mustJSON(req.Images)
	}
	if req.Specifications != nil {
		p.Specifications = mustJSON(req.Specifications)
	}
	if req.InstallmentMonths != nil {
		p.InstallmentMonths = *req.InstallmentMonths
	}
	if req.InstallmentAvailable != nil {
		p.InstallmentAvailable = *req.InstallmentAvailable
	}
	if req.IsBestseller != nil {
		p.IsBestseller = *req.IsBestseller
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
