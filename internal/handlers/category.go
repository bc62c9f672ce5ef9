package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id"`
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == "" {
		return errorMessage(c, http.StatusBadRequest, "name is required")
	}

	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.First(&parent, *req.ParentID).Error; err != nil {
			return errorMessage(c, http.StatusBadRequest, "parent category not found")
		}
	}

	category := models.Category{
		Name:     req.Name,
		Slug:     slugify(req.Name),
		ParentID: req.ParentID,
		ImageURL: req.ImageURL,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) PatchCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "category not found")
	}

	var req struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id"`
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name != "" {
		category.Name = req.Name
		category.Slug = slugify(req.Name)
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return errorMessage(c, http.StatusBadRequest, "category cannot be its own parent")
		}
		category.ParentID = req.ParentID
	}
	if req.ImageURL != "" {
		category.ImageURL = req.ImageURL
	}

	if err := h.DB.Save(&category).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var count int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if count > 0 {
		return errorMessage(c, http.StatusConflict, "category still has products")
	}

	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}
