// AngelaMos | 2026
// handler.go

package payment

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/selfmode/selfmode-api/internal/assessment"
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
	r.Route("/payments", func(r chi.Router) {
		// The gateway posts here after checkout; it carries no bearer
		// token, so verification happens against the gateway itself.
		r.Post("/callback", h.Callback)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/create", h.Create)
			r.Get("/status/{paymentID}", h.Status)
			r.Post("/refund/{paymentID}", h.Refund)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.InitiatePayment(
		r.Context(),
		userID,
		req.PackageID,
		clientIP(r),
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "package")
		case errors.Is(err, assessment.ErrBracketMismatch):
			core.BadRequest(w, "package is not available for your age group")
		case errors.Is(err, assessment.ErrAlreadyActive):
			core.Conflict(w, "an assessment is already in progress")
		case errors.Is(err, ErrGatewayDisabled):
			core.JSONError(w, core.ExternalServiceError(
				"iyzico",
				"payment gateway not configured",
			))
		case core.IsAppError(err):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest

	// iyzico posts the token either as JSON or form-encoded.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Token = r.PostFormValue("token")
	}

	if req.Token == "" {
		core.BadRequest(w, "token is required")
		return
	}

	resp, err := h.service.HandleCallback(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenProcessed):
			core.Conflict(w, "payment already processed")
		case errors.Is(err, ErrPaymentFailed):
			core.BadRequest(w, "payment verification failed")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "assessment")
		case errors.Is(err, ErrGatewayDisabled):
			core.JSONError(w, core.ExternalServiceError(
				"iyzico",
				"payment gateway not configured",
			))
		case core.IsAppError(err):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	paymentID := chi.URLParam(r, "paymentID")

	resp, err := h.service.PaymentStatus(r.Context(), paymentID, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "assessment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	paymentID := chi.URLParam(r, "paymentID")

	var req RefundPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Refund(r.Context(), paymentID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "assessment")
		case errors.Is(err, ErrNotRefundable):
			core.BadRequest(w, err.Error())
		case errors.Is(err, core.ErrConflict):
			core.Conflict(w, "payment is no longer refundable")
		case errors.Is(err, ErrGatewayDisabled):
			core.JSONError(w, core.ExternalServiceError(
				"iyzico",
				"payment gateway not configured",
			))
		case core.IsAppError(err):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
