package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/content"
	"github.com/ystore/marketplace/internal/models"
)

// ContentHandler serves the storefront's promotional units: hero slides,
// popular categories, actual offers and promotion campaigns. Public reads
// see only active entries in manual sort order; the admin console gets full
// CRUD plus reordering and active toggles.
type ContentHandler struct {
	DB *gorm.DB
}

func activeOrdered(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true).Order("sort_order ASC, id ASC")
}

// ---- hero slides ----

func (h *ContentHandler) GetHeroSlides(c echo.Context) error {
	var slides []models.HeroSlide
	if err := activeOrdered(h.DB).Find(&slides).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, slides)
}

func (h *ContentHandler) ListHeroSlides(c echo.Context) error {
	var slides []models.HeroSlide
	if err := h.DB.Order("sort_order ASC, id ASC").Find(&slides).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, slides)
}

func (h *ContentHandler) CreateHeroSlide(c echo.Context) error {
	var slide models.HeroSlide
	if err := c.Bind(&slide); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if slide.Title == "" {
		return errorMessage(c, http.StatusBadRequest, "title is required")
	}
	if slide.Type == "" {
		slide.Type = models.SlideBanner
	}
	if slide.Type != models.SlideBanner && slide.Type != models.SlideProduct {
		return errorMessage(c, http.StatusBadRequest, "invalid type")
	}
	if slide.Type == models.SlideProduct && slide.ProductID == nil {
		return errorMessage(c, http.StatusBadRequest, "product_id is required for product slides")
	}

	slide.ID = 0
	slide.Active = true
	if err := h.DB.Create(&slide).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, slide)
}

func (h *ContentHandler) PatchHeroSlide(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var slide models.HeroSlide
	if err := h.DB.First(&slide, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "hero slide not found")
	}

	var req map[string]json.RawMessage
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := json.Unmarshal(mergeBody(req), &slide); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	slide.ID = id

	if err := h.DB.Save(&slide).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, slide)
}

func (h *ContentHandler) DeleteHeroSlide(c echo.Context) error {
	return h.deleteByID(c, &models.HeroSlide{})
}

// ---- popular categories ----

func (h *ContentHandler) GetPopularCategories(c echo.Context) error {
	var cats []models.PopularCategory
	if err := activeOrdered(h.DB).Find(&cats).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *ContentHandler) CreatePopularCategory(c echo.Context) error {
	var cat models.PopularCategory
	if err := c.Bind(&cat); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if cat.Name == "" {
		return errorMessage(c, http.StatusBadRequest, "name is required")
	}
	cat.ID = 0
	cat.Active = true
	if err := h.DB.Create(&cat).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *ContentHandler) PatchPopularCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var cat models.PopularCategory
	if err := h.DB.First(&cat, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "popular category not found")
	}

	var req map[string]json.RawMessage
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := json.Unmarshal(mergeBody(req), &cat); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	cat.ID = id

	if err := h.DB.Save(&cat).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *ContentHandler) DeletePopularCategory(c echo.Context) error {
	return h.deleteByID(c, &models.PopularCategory{})
}

// ---- actual offers ----

func (h *ContentHandler) GetActualOffers(c echo.Context) error {
	var offers []models.ActualOffer
	if err := activeOrdered(h.DB).Find(&offers).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, offers)
}

// GetActualOffer resolves the offer's product id list into full products.
func (h *ContentHandler) GetActualOffer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var offer models.ActualOffer
	if err := h.DB.Where("active = ?", true).First(&offer, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "offer not found")
	}

	var ids []uint
	if len(offer.ProductIDs) > 0 {
		if err := json.Unmarshal(offer.ProductIDs, &ids); err != nil {
			c.Logger().Errorf("bad product_ids on offer %d: %v", offer.ID, err)
		}
	}

	products := []models.Product{}
	if len(ids) > 0 {
		if err := h.DB.Where("id IN ? AND status = ?", ids, models.ProductPublished).
			Find(&products).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"offer":    offer,
		"products": products,
	})
}

func (h *ContentHandler) CreateActualOffer(c echo.Context) error {
	var offer models.ActualOffer
	if err := c.Bind(&offer); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if offer.Title == "" || offer.ImageURL == "" {
		return errorMessage(c, http.StatusBadRequest, "title and image_url are required")
	}
	offer.ID = 0
	offer.Active = true
	if err := h.DB.Create(&offer).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, offer)
}

func (h *ContentHandler) PatchActualOffer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var offer models.ActualOffer
	if err := h.DB.First(&offer, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "offer not found")
	}

	var req map[string]json.RawMessage
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := json.Unmarshal(mergeBody(req), &offer); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	offer.ID = id

	if err := h.DB.Save(&offer).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, offer)
}

func (h *ContentHandler) DeleteActualOffer(c echo.Context) error {
	return h.deleteByID(c, &models.ActualOffer{})
}

// ---- promotions ----

type promotionResponse struct {
	models.Promotion
	TimeLeft *content.TimeLeft `json:"time_left,omitempty"`
}

// GetPromotions lists active campaigns. A promotion whose countdown has
// elapsed carries no time_left, which the storefront treats as "hide the
// countdown".
func (h *ContentHandler) GetPromotions(c echo.Context) error {
	var promos []models.Promotion
	if err := activeOrdered(h.DB).Find(&promos).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	now := time.Now()
	resp := make([]promotionResponse, len(promos))
	for i, p := range promos {
		resp[i] = promotionResponse{Promotion: p}
		if p.CountdownEnabled {
			resp[i].TimeLeft = content.Countdown(p.CountdownEndDate, now)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) CreatePromotion(c echo.Context) error {
	var promo models.Promotion
	if err := c.Bind(&promo); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if promo.Title == "" {
		return errorMessage(c, http.StatusBadRequest, "title is required")
	}
	if promo.CountdownEnabled && promo.CountdownEndDate == nil {
		return errorMessage(c, http.StatusBadRequest, "countdown_end_date is required when countdown is enabled")
	}
	promo.ID = 0
	promo.Active = true
	if err := h.DB.Create(&promo).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, promo)
}

func (h *ContentHandler) PatchPromotion(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var promo models.Promotion
	if err := h.DB.First(&promo, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "promotion not found")
	}

	var req map[string]json.RawMessage
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := json.Unmarshal(mergeBody(req), &promo); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	promo.ID = id

	if err := h.DB.Save(&promo).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, promo)
}

func (h *ContentHandler) DeletePromotion(c echo.Context) error {
	return h.deleteByID(c, &models.Promotion{})
}

// ---- shared ----

func (h *ContentHandler) deleteByID(c echo.Context, model any) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.DB.Delete(model, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// mergeBody re-serializes a partial JSON body so it can be unmarshalled over
// the stored record, touching only the fields the client sent.
func mergeBody(fields map[string]json.RawMessage) []byte {
	data, err := json.Marshal(fields)
	if err != nil {
		return []byte("{}")
	}
	return data
}
