package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/service"
	"github.com/wayplanhq/wayplan-backend/internal/util"
)

type ItineraryHandler struct {
	auth      *service.AuthService
	itinerary *service.ItineraryService
}

type attachmentFieldsRequest struct {
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Notes        *string    `json:"notes"`
	Rating       *int       `json:"rating"`
	DurationMins *int       `json:"duration_mins"`
}

type addPlaceRequest struct {
	ExternalID string `json:"external_id"`
	Place      *struct {
		Name             string   `json:"name"`
		FormattedAddress *string  `json:"formatted_address"`
		Summary          *string  `json:"summary"`
		Description      *string  `json:"description"`
		Tags             []string `json:"tags"`
		Latitude         *float64 `json:"latitude"`
		Longitude        *float64 `json:"longitude"`
		CountryCode      *string  `json:"country_code"`
		CountryName      *string  `json:"country_name"`
		PhotoRef         *string  `json:"photo_ref"`
	} `json:"place"`
	attachmentFieldsRequest
}

func RegisterItinerary(e *echo.Echo, auth *service.AuthService, itinerary *service.ItineraryService) {
	handler := &ItineraryHandler{auth: auth, itinerary: itinerary}

	trips := e.Group("/api/v1/trips", RequireAuth(auth))
	trips.POST("", handler.createTrip)
	trips.GET("", handler.listTrips)
	trips.GET("/:trip_id/days", handler.listDays)
	trips.POST("/:trip_id/days", handler.createDays)

	days := e.Group("/api/v1/days", RequireAuth(auth))
	days.GET("/:day_id", handler.getDay)
	days.POST("/:day_id/places", handler.addPlace)
	days.PUT("/:day_id/order", handler.reorderDay)

	attachments := e.Group("/api/v1/attachments", RequireAuth(auth))
	attachments.PATCH("/:attachment_id", handler.updateAttachment)
	attachments.DELETE("/:attachment_id", handler.deleteAttachment)
	attachments.POST("/:attachment_id/move", handler.moveAttachment)
}

func (h *ItineraryHandler) createTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		Title     string `json:"title"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	trip, days, err := h.itinerary.CreateTrip(c.Request().Context(), user.ID, req.Title, start, end)
	if err != nil {
		if errors.Is(err, service.ErrItineraryValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not create trip"))
	}
	return c.JSON(http.StatusCreated, util.Envelope{"trip": trip, "days": days})
}

func (h *ItineraryHandler) listTrips(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	limit, offset := parsePagination(c, 20, 0)

	trips, err := h.itinerary.ListTrips(c.Request().Context(), user.ID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load trips"))
	}
	return c.JSON(http.StatusOK, util.Data("trips", trips))
}

func (h *ItineraryHandler) listDays(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	tripID, err := parseUUIDParam(c, "trip_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	days, err := h.itinerary.ListDays(c.Request().Context(), user.ID, tripID)
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("trip not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load days"))
	}
	return c.JSON(http.StatusOK, util.Data("days", days))
}

func (h *ItineraryHandler) createDays(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	tripID, err := parseUUIDParam(c, "trip_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	days, err := h.itinerary.CreateDaysForRange(c.Request().Context(), user.ID, tripID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTripNotFound):
			return c.JSON(http.StatusNotFound, util.Error("trip not found"))
		case errors.Is(err, service.ErrItineraryValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create days"))
		}
	}
	return c.JSON(http.StatusCreated, util.Data("days", days))
}

func (h *ItineraryHandler) getDay(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	dayID, err := parseUUIDParam(c, "day_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	view, err := h.itinerary.GetDayWithAttachments(c.Request().Context(), user.ID, dayID)
	if err != nil {
		if errors.Is(err, service.ErrDayNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("day not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load day"))
	}
	return c.JSON(http.StatusOK, util.Data("day_view", view))
}

func (h *ItineraryHandler) addPlace(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	dayID, err := parseUUIDParam(c, "day_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	var req addPlaceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.ExternalID) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("external_id is required"))
	}

	ref := service.PlaceRef{ExternalID: req.ExternalID}
	if req.Place != nil {
		ref.Fields = domain.PlaceFields{
			Name:             req.Place.Name,
			FormattedAddress: req.Place.FormattedAddress,
			Summary:          req.Place.Summary,
			Description:      req.Place.Description,
			Tags:             domain.TagList(req.Place.Tags),
			Latitude:         req.Place.Latitude,
			Longitude:        req.Place.Longitude,
			CountryCode:      req.Place.CountryCode,
			CountryName:      req.Place.CountryName,
			PhotoRef:         req.Place.PhotoRef,
		}
	}

	attachment, err := h.itinerary.AddPlaceToDay(c.Request().Context(), user.ID, dayID, ref, domain.AttachmentUserFields{
		ScheduledAt:  req.ScheduledAt,
		Notes:        req.Notes,
		Rating:       req.Rating,
		DurationMins: req.DurationMins,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound):
			return c.JSON(http.StatusNotFound, util.Error("day not found"))
		case errors.Is(err, service.ErrItineraryValidation), errors.Is(err, service.ErrPlaceValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not add place"))
		}
	}
	return c.JSON(http.StatusCreated, util.Data("attachment", attachment))
}

func (h *ItineraryHandler) reorderDay(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	dayID, err := parseUUIDParam(c, "day_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	var req struct {
		AttachmentIDs []uuid.UUID `json:"attachment_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.itinerary.ReorderDay(c.Request().Context(), user.ID, dayID, req.AttachmentIDs); err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound):
			return c.JSON(http.StatusNotFound, util.Error("day not found"))
		case errors.Is(err, service.ErrOrderMismatch):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reorder day"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"day_id": dayID, "message": "day reordered"})
}

func (h *ItineraryHandler) updateAttachment(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	attachmentID, err := parseUUIDParam(c, "attachment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	var req struct {
		attachmentFieldsRequest
		Visited *bool `json:"visited"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	attachment, err := h.itinerary.UpdateAttachment(c.Request().Context(), user.ID, attachmentID, domain.AttachmentUpdate{
		ScheduledAt:  req.ScheduledAt,
		Notes:        req.Notes,
		Rating:       req.Rating,
		DurationMins: req.DurationMins,
		Visited:      req.Visited,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentNotFound), errors.Is(err, service.ErrDayNotFound):
			return c.JSON(http.StatusNotFound, util.Error("attachment not found"))
		case errors.Is(err, service.ErrItineraryValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update attachment"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("attachment", attachment))
}

func (h *ItineraryHandler) deleteAttachment(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	attachmentID, err := parseUUIDParam(c, "attachment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	if err := h.itinerary.DeleteAttachment(c.Request().Context(), user.ID, attachmentID); err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentNotFound), errors.Is(err, service.ErrDayNotFound):
			return c.JSON(http.StatusNotFound, util.Error("attachment not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not delete attachment"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"attachment_id": attachmentID, "message": "attachment removed"})
}

func (h *ItineraryHandler) moveAttachment(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	attachmentID, err := parseUUIDParam(c, "attachment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	var req struct {
		TargetDayID string `json:"target_day_id"`
		Position    int    `json:"position"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	targetDayID, err := uuid.Parse(strings.TrimSpace(req.TargetDayID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("target_day_id must be a valid UUID"))
	}

	attachment, err := h.itinerary.MoveAttachment(c.Request().Context(), user.ID, attachmentID, targetDayID, req.Position)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentNotFound), errors.Is(err, service.ErrDayNotFound):
			return c.JSON(http.StatusNotFound, util.Error("attachment or day not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not move attachment"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("attachment", attachment))
}
