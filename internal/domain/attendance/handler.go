package attendance

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/acutecare/triagem/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/attendances", auth.RequireRole("reception", "triage", "physician", "nurse"))
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/status", h.ChangeStatus)
	g.GET("/:id/status-history", h.StatusHistory)
	g.GET("/patient/:patientId", h.ListByPatient)
}

// CreateRequest is the wire shape for POST /attendances.
type CreateRequest struct {
	EstablishmentID *uuid.UUID `json:"establishment_id,omitempty"`
	PatientID       uuid.UUID  `json:"patient_id"`
	ArrivalTime     *time.Time `json:"arrival_time,omitempty"`
	Note            *string    `json:"note,omitempty"`
}

// ChangeStatusRequest is the wire shape for POST /attendances/:id/status.
type ChangeStatusRequest struct {
	Status       string     `json:"status"`
	ChangedBy    *uuid.UUID `json:"changed_by,omitempty"`
	AttendingID  *uuid.UUID `json:"attending_id,omitempty"`
	TransferDest *string    `json:"transfer_dest,omitempty"`
	Note         *string    `json:"note,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), CreateCommand{
		EstablishmentID: req.EstablishmentID,
		PatientID:       req.PatientID,
		ArrivalTime:     req.ArrivalTime,
		Note:            req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ChangeStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	changedBy := req.ChangedBy
	if sub := auth.UserIDFromContext(c.Request().Context()); sub != "" {
		if uid, err := uuid.Parse(sub); err == nil {
			changedBy = &uid
		}
	}

	a, err := h.svc.ChangeStatus(c.Request().Context(), id, ChangeStatusCommand{
		Status:       Status(req.Status),
		ChangedBy:    changedBy,
		AttendingID:  req.AttendingID,
		TransferDest: req.TransferDest,
		Note:         req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) StatusHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	history, err := h.svc.StatusHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"attendance_id": id,
		"history":       history,
	})
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id": patientID,
		"items":      items,
		"total":      len(items),
	})
}
