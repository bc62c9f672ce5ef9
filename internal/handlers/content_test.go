package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ystore/marketplace/internal/content"
	"github.com/ystore/marketplace/internal/models"
)

func TestHeroSlidesActiveAndOrdered(t *testing.T) {
	env := newTestEnv(t)

	for _, s := range []models.HeroSlide{
		{Title: "Second", SortOrder: 2, Active: true},
		{Title: "First", SortOrder: 1, Active: true},
		{Title: "Hidden", SortOrder: 0, Active: false},
	} {
		require.NoError(t, env.DB.Create(&s).Error)
	}

	rec, c := env.request(http.MethodGet, "/api/v1/content/hero-slides", nil)
	require.NoError(t, env.Content.GetHeroSlides(c))
	require.Equal(t, http.StatusOK, rec.Code)

	slides := decode[[]models.HeroSlide](t, rec)
	require.Len(t, slides, 2)
	require.Equal(t, "First", slides[0].Title)
	require.Equal(t, "Second", slides[1].Title)

	// the admin listing includes hidden entries
	rec, c = env.request(http.MethodGet, "/api/v1/admin/hero-slides", nil)
	require.NoError(t, env.Content.ListHeroSlides(c))
	require.Len(t, decode[[]models.HeroSlide](t, rec), 3)
}

func TestCreateHeroSlideValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.request(http.MethodPost, "/api/v1/admin/hero-slides",
		map[string]any{"title": "Promo", "type": "carousel"})
	require.NoError(t, env.Content.CreateHeroSlide(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// product slides need a product
	rec, c = env.request(http.MethodPost, "/api/v1/admin/hero-slides",
		map[string]any{"title": "Promo", "type": models.SlideProduct})
	require.NoError(t, env.Content.CreateHeroSlide(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.request(http.MethodPost, "/api/v1/admin/hero-slides",
		map[string]any{"title": "Promo", "type": models.SlideProduct, "product_id": 5})
	require.NoError(t, env.Content.CreateHeroSlide(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[models.HeroSlide](t, rec)
	require.True(t, created.Active)
}

func TestPatchHeroSlidePartial(t *testing.T) {
	env := newTestEnv(t)
	slide := models.HeroSlide{Title: "Summer Sale", Subtitle: "Up to 50%", Active: true}
	require.NoError(t, env.DB.Create(&slide).Error)

	rec, c := env.request(http.MethodPatch, "/api/v1/admin/hero-slides/1",
		map[string]any{"active": false})
	c.SetParamNames("id")
	c.SetParamValues(pathID(slide.ID))
	require.NoError(t, env.Content.PatchHeroSlide(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.HeroSlide
	require.NoError(t, env.DB.First(&stored, slide.ID).Error)
	require.False(t, stored.Active)
	require.Equal(t, "Summer Sale", stored.Title)
	require.Equal(t, "Up to 50%", stored.Subtitle)
}

func TestGetActualOfferResolvesProducts(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser("seller@example.com", models.RoleSeller)
	cat := env.createCategory("Gifts")
	visible := env.createProduct(seller, cat, "Gift Box", 500, 10)
	hidden := env.createProduct(seller, cat, "Draft Gift", 700, 10)
	require.NoError(t, env.DB.Model(hidden).Update("status", models.ProductDraft).Error)

	offer := models.ActualOffer{
		Title:      "Holiday Picks",
		ImageURL:   "https://cdn.example.com/holiday.png",
		ProductIDs: mustJSON([]uint{visible.ID, hidden.ID, 9999}),
		Active:     true,
	}
	require.NoError(t, env.DB.Create(&offer).Error)

	rec, c := env.request(http.MethodGet, "/api/v1/content/actual-offers/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(pathID(offer.ID))
	require.NoError(t, env.Content.GetActualOffer(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[struct {
		Offer    models.ActualOffer `json:"offer"`
		Products []models.Product   `json:"products"`
	}](t, rec)
	require.Len(t, resp.Products, 1)
	require.Equal(t, visible.ID, resp.Products[0].ID)
}

func TestGetPromotionsCountdown(t *testing.T) {
	env := newTestEnv(t)

	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-time.Hour)
	for _, p := range []models.Promotion{
		{Title: "Live countdown", CountdownEnabled: true, CountdownEndDate: &future, SortOrder: 1, Active: true},
		{Title: "Elapsed countdown", CountdownEnabled: true, CountdownEndDate: &past, SortOrder: 2, Active: true},
		{Title: "No countdown", SortOrder: 3, Active: true},
	} {
		require.NoError(t, env.DB.Create(&p).Error)
	}

	rec, c := env.request(http.MethodGet, "/api/v1/content/promotions", nil)
	require.NoError(t, env.Content.GetPromotions(c))
	require.Equal(t, http.StatusOK, rec.Code)

	promos := decode[[]struct {
		Title    string            `json:"title"`
		TimeLeft *content.TimeLeft `json:"time_left"`
	}](t, rec)
	require.Len(t, promos, 3)

	require.NotNil(t, promos[0].TimeLeft)
	require.InDelta(t, 1, promos[0].TimeLeft.Days, 1)
	// an elapsed countdown is simply absent
	require.Nil(t, promos[1].TimeLeft)
	require.Nil(t, promos[2].TimeLeft)
}

func TestCreatePromotionRequiresEndDate(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.request(http.MethodPost, "/api/v1/admin/promotions",
		map[string]any{"title": "Flash Sale", "countdown_enabled": true})
	require.NoError(t, env.Content.CreatePromotion(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.request(http.MethodPost, "/api/v1/admin/promotions", map[string]any{
		"title":              "Flash Sale",
		"countdown_enabled":  true,
		"countdown_end_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, env.Content.CreatePromotion(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestDeletePopularCategory(t *testing.T) {
	env := newTestEnv(t)
	cat := models.PopularCategory{Name: "Electronics", Icon: "laptop", Active: true}
	require.NoError(t, env.DB.Create(&cat).Error)

	rec, c := env.request(http.MethodDelete, "/api/v1/admin/popular-categories/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(pathID(cat.ID))
	require.NoError(t, env.Content.DeletePopularCategory(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.PopularCategory{}).Count(&count).Error)
	require.Zero(t, count)
}
