package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wayplanhq/wayplan-backend/internal/places"
	"github.com/wayplanhq/wayplan-backend/internal/service"
	"github.com/wayplanhq/wayplan-backend/internal/util"
)

type PlaceHandler struct {
	auth    *service.AuthService
	catalog *service.CatalogService
	search  places.SearchProvider
}

func RegisterPlaces(e *echo.Echo, auth *service.AuthService, catalog *service.CatalogService, search places.SearchProvider) {
	handler := &PlaceHandler{auth: auth, catalog: catalog, search: search}

	group := e.Group("/api/v1/places", RequireAuth(auth))
	group.GET("/search", handler.searchPlaces)
	group.GET("/:place_id", handler.getPlace)
	group.DELETE("/:place_id", handler.deletePlace)
}

func (h *PlaceHandler) searchPlaces(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, util.Error("query parameter q is required"))
	}

	opts := places.SearchOptions{Locale: strings.TrimSpace(c.QueryParam("locale"))}
	if raw := strings.TrimSpace(c.QueryParam("types")); raw != "" {
		opts.Types = strings.Split(raw, ",")
	}

	suggestions, err := h.search.Autocomplete(c.Request().Context(), query, opts)
	if err != nil {
		return c.JSON(http.StatusBadGateway, util.Error("place search is unavailable"))
	}
	return c.JSON(http.StatusOK, util.Data("suggestions", suggestions))
}

func (h *PlaceHandler) getPlace(c echo.Context) error {
	placeID, err := parseUUIDParam(c, "place_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	place, err := h.catalog.GetPlace(c.Request().Context(), placeID)
	if err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("place not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load place"))
	}
	return c.JSON(http.StatusOK, util.Data("place", place))
}

func (h *PlaceHandler) deletePlace(c echo.Context) error {
	placeID, err := parseUUIDParam(c, "place_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	if err := h.catalog.DeletePlace(c.Request().Context(), placeID); err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceNotFound):
			return c.JSON(http.StatusNotFound, util.Error("place not found"))
		case errors.Is(err, service.ErrPlaceInUse):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not delete place"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"place_id": placeID, "message": "place deleted"})
}
