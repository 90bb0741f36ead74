package triage

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/acutecare/triagem/internal/platform/auth"
	"github.com/acutecare/triagem/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/triage", auth.RequireRole("triage", "physician", "nurse"))
	g.POST("", h.Create)
	g.GET("/queue", h.WaitingQueue)
	g.GET("/observation", h.ObservationView)
	g.GET("/:id", h.Get)
	g.POST("/:id/re-evaluate", h.ReEvaluate)
	g.GET("/patient/:patientId", h.ListByPatient)
}

// CreateRequest is the wire shape for POST /triage.
type CreateRequest struct {
	PatientID        uuid.UUID     `json:"patient_id"`
	AttendanceID     *uuid.UUID    `json:"attendance_id,omitempty"`
	EstablishmentID  *uuid.UUID    `json:"establishment_id,omitempty"`
	TriagedBy        *uuid.UUID    `json:"triaged_by,omitempty"`
	ChiefComplaint   string        `json:"chief_complaint"`
	VitalSigns       *VitalSigns   `json:"vital_signs,omitempty"`
	Discriminators   []string      `json:"discriminators,omitempty"`
	Presentation     Presentation  `json:"presentation,omitempty"`
	Consciousness    Consciousness `json:"consciousness,omitempty"`
	OverridePriority *string       `json:"override_priority,omitempty"`
	OverrideReason   string        `json:"override_reason,omitempty"`
}

// ReEvaluateRequest is the wire shape for POST /triage/:id/re-evaluate.
type ReEvaluateRequest struct {
	Priority string     `json:"priority"`
	Reason   string     `json:"reason"`
	ActorID  *uuid.UUID `json:"actor_id,omitempty"`
}

// actorID prefers the authenticated subject and falls back to the explicit
// body field when the subject is not a UUID (development tokens).
func actorID(c echo.Context, explicit *uuid.UUID) uuid.UUID {
	if sub := auth.UserIDFromContext(c.Request().Context()); sub != "" {
		if id, err := uuid.Parse(sub); err == nil {
			return id
		}
	}
	if explicit != nil {
		return *explicit
	}
	return uuid.Nil
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cmd := CreateCommand{
		PatientID:       req.PatientID,
		AttendanceID:    req.AttendanceID,
		EstablishmentID: req.EstablishmentID,
		TriagedBy:       actorID(c, req.TriagedBy),
		Input: PresentationInput{
			ChiefComplaint: req.ChiefComplaint,
			VitalSigns:     req.VitalSigns,
			Discriminators: req.Discriminators,
			Presentation:   req.Presentation,
			Consciousness:  req.Consciousness,
		},
		OverrideReason: req.OverrideReason,
	}
	if req.OverridePriority != nil {
		p, err := ParsePriority(*req.OverridePriority)
		if err != nil {
			return err
		}
		cmd.OverridePriority = &p
	}

	rec, err := h.svc.Create(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ReEvaluate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ReEvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return err
	}

	rec, err := h.svc.ReEvaluate(c.Request().Context(), id, priority, req.Reason, actorID(c, req.ActorID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) WaitingQueue(c echo.Context) error {
	filter, err := queueFilterFromRequest(c)
	if err != nil {
		return err
	}
	queue, err := h.svc.WaitingQueue(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": queue, "total": len(queue)})
}

func (h *Handler) ObservationView(c echo.Context) error {
	filter, err := queueFilterFromRequest(c)
	if err != nil {
		return err
	}
	view, err := h.svc.ObservationView(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": view, "total": len(view)})
}

func queueFilterFromRequest(c echo.Context) (QueueFilter, error) {
	var filter QueueFilter
	if raw := c.QueryParam("establishment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid establishment_id")
		}
		filter.EstablishmentID = &id
	}
	if raw := c.QueryParam("window_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid window_hours")
		}
		filter.Window = time.Duration(hours) * time.Hour
	}
	return filter, nil
}
