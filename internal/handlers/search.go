package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/ystore/marketplace/internal/service/search"
	"github.com/ystore/marketplace/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return errorMessage(c, http.StatusBadRequest, "q is required")
	}

	limit, skip := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		parseIntDefault(c.QueryParam("skip"), 0),
	)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, q, skip, limit)
	if err != nil {
		return errorResponse(c, http.StatusBadGateway, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"products": products,
	})
}
