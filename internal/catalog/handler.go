// AngelaMos | 2026
// handler.go

package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/middleware"
	"github.com/selfmode/selfmode-api/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/assessments/packages", func(r chi.Router) {
		r.Get("/", h.ListPackages)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/filtered", h.ListFilteredPackages)
		})

		r.Get("/{packageID}", h.GetPackage)
	})
}

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.ListPackages(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CatalogResponse{Packages: ToPackageResponseList(packages)})
}

// ListFilteredPackages returns only the tier matching the caller's age
// bracket.
func (h *Handler) ListFilteredPackages(
	w http.ResponseWriter,
	r *http.Request,
) {
	ageGroup := user.AgeGroup(middleware.GetUserAgeGroup(r.Context()))

	packages, err := h.service.ListPackagesForAgeGroup(r.Context(), ageGroup)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown age group")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, FilteredCatalogResponse{
		AgeGroup: ageGroup,
		Packages: ToPackageResponseList(packages),
	})
}

func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageID")

	pkg, err := h.service.GetPackage(r.Context(), packageID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "package")
			return
		}
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "package ID required")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPackageResponse(pkg))
}
