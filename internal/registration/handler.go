// AngelaMos | 2026
// handler.go

package registration

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/plate-registry/internal/core"
	"github.com/angelamos/plate-registry/internal/middleware"
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
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/registrations", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/statistics", h.Statistics)

		r.Route("/{registrationID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Get("/qr", h.QR)
			r.With(adminOnly).Delete("/", h.Delete)
		})
	})
}

// List returns one page of registrations. Out-of-range paging values
// are clamped and an unrecognized status filter is ignored, so the
// endpoint never 400s on filter input.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListRegistrationsParams{
		Page:   parseIntQuery(r, "page", 1),
		Limit:  parseIntQuery(r, "limit", 10),
		Search: q.Get("search"),
		Status: q.Get("status"),
	}

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	createdBy := middleware.GetUserID(r.Context())

	reg, err := h.service.Create(r.Context(), req, createdBy)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("plateNumber"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToRegistrationResponse(reg))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := registrationID(w, r)
	if !ok {
		return
	}

	reg, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "registration")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRegistrationResponse(reg))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := registrationID(w, r)
	if !ok {
		return
	}

	var req UpdateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	reg, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "no fields to update")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "registration")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("plateNumber"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToRegistrationResponse(reg))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := registrationID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "registration")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

// QR streams a PNG QR code summarizing the registration for road-side
// verification. ?size=N picks the pixel size, clamped to [64, 1024].
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	id, ok := registrationID(w, r)
	if !ok {
		return
	}

	reg, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "registration")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	png, err := EncodeQR(reg, parseIntQuery(r, "size", 0))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	//nolint:errcheck // best-effort image write
	_, _ = w.Write(png)
}

func registrationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "registrationID"), 10, 64)
	if err != nil || id < 1 {
		core.BadRequest(w, "invalid registration id")
		return 0, false
	}
	return id, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
