// AngelaMos | 2026
// handler.go

package assessment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/assessments", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/create", h.Create)
		r.Get("/my-assessments", h.ListMine)
		r.Get("/{assessmentID}", h.Get)
		r.Put("/{assessmentID}/status", h.UpdateStatus)
		r.Put("/{assessmentID}/results", h.SaveResults)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	assessment, err := h.service.Create(r.Context(), userID, req.PackageID)
	if err != nil {
		h.respondCreateError(w, err)
		return
	}

	core.Created(w, ToAssessmentResponse(assessment))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	assessments, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, AssessmentListResponse{
		Assessments: ToAssessmentDetailResponseList(assessments),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	assessmentID := chi.URLParam(r, "assessmentID")

	assessment, err := h.service.GetForUser(r.Context(), assessmentID, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "assessment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAssessmentResponse(assessment))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	assessmentID := chi.URLParam(r, "assessmentID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	assessment, err := h.service.UpdateStatus(
		r.Context(),
		assessmentID,
		userID,
		Status(req.Status),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "assessment")
			return
		}
		if errors.Is(err, ErrInvalidTransition) {
			core.BadRequest(w, err.Error())
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.Conflict(w, "assessment was modified concurrently")
			return
		}
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown status")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAssessmentResponse(assessment))
}

func (h *Handler) SaveResults(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	assessmentID := chi.URLParam(r, "assessmentID")

	var req SaveResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if len(req.Results) == 0 {
		core.BadRequest(w, "results required")
		return
	}

	assessment, err := h.service.SaveResults(
		r.Context(),
		assessmentID,
		userID,
		req.Results,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "assessment")
			return
		}
		if errors.Is(err, ErrResultsNotWritable) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAssessmentResponse(assessment))
}

func (h *Handler) respondCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "package")
	case errors.Is(err, ErrBracketMismatch):
		core.BadRequest(w, "package is not available for your age group")
	case errors.Is(err, ErrAlreadyActive):
		core.Conflict(w, "an assessment is already in progress")
	default:
		core.InternalServerError(w, err)
	}
}
