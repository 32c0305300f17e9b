package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/somoapp/campus-events/internal/config"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/idempotency"
	"github.com/somoapp/campus-events/internal/observability"
	"github.com/somoapp/campus-events/internal/service"
)

type Handlers struct {
	cfg          *config.Config
	campuses     *service.CampusService
	catalog      *service.CatalogService
	reservations *service.ReservationService
	idemp        *idempotency.Idempotency
	logger       observability.Logger
}

func NewHandlers(
	cfg *config.Config,
	campuses *service.CampusService,
	catalog *service.CatalogService,
	reservations *service.ReservationService,
	idemp *idempotency.Idempotency,
	logger observability.Logger,
) *Handlers {
	return &Handlers{
		cfg:          cfg,
		campuses:     campuses,
		catalog:      catalog,
		reservations: reservations,
		idemp:        idemp,
		logger:       logger,
	}
}

func (h *Handlers) nearestQuery(r *http.Request) service.NearestQuery {
	return service.NearestQuery{
		RawLat:      r.URL.Query().Get("lat"),
		RawLng:      r.URL.Query().Get("lng"),
		ViewerEmail: ViewerEmail(r.Context()),
	}
}

func (h *Handlers) NearestCampus(w http.ResponseWriter, r *http.Request) {
	result, err := h.campuses.Nearest(r.Context(), h.nearestQuery(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) NearestCampuses(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := h.campuses.NearestMany(r.Context(), h.nearestQuery(r), limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) NearestWithEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := h.campuses.NearestWithEvents(r.Context(), h.nearestQuery(r), limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListCampuses(w http.ResponseWriter, r *http.Request) {
	campuses, err := h.campuses.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campuses)
}

func (h *Handlers) ValidateDomain(w http.ResponseWriter, r *http.Request) {
	emailDomain := r.URL.Query().Get("domain")
	if emailDomain == "" {
		writeError(w, http.StatusBadRequest, "Missing domain parameter")
		return
	}
	check, err := h.campuses.ValidateDomain(r.Context(), emailDomain)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := service.ListQuery{
		Search:      q.Get("search"),
		Campus:      q.Get("campus"),
		Sort:        q.Get("sort"),
		ViewerEmail: ViewerEmail(r.Context()),
	}
	if raw, _ := strconv.ParseInt(q.Get("limit"), 10, 64); raw > 0 {
		query.Limit = raw
	}

	rawCustom := q.Get("is_custom")
	if rawCustom == "" {
		rawCustom = q.Get("is_custom_location")
	}
	if rawCustom != "" {
		if value, ok := ParseBoolToken(rawCustom); ok {
			query.IsCustom = &value
		}
	}

	events, err := h.catalog.List(r.Context(), query)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// createEventRequest decodes permissively: flags and price may arrive as
// booleans, numbers or token strings; anything malformed normalizes instead
// of rejecting.
type createEventRequest struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Campus           string      `json:"campus"`
	Location         string      `json:"location"`
	ImageURL         string      `json:"image_url"`
	OpenTo           string      `json:"open_to"`
	StartTime        string      `json:"start_time"`
	EndTime          string      `json:"end_time"`
	IsFree           interface{} `json:"is_free"`
	TicketPrice      interface{} `json:"ticket_price"`
	IsCustomLocation interface{} `json:"is_custom_location"`
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.catalog.Create(r.Context(), service.CreateEventInput{
		Title:            req.Title,
		Description:      req.Description,
		Campus:           req.Campus,
		Location:         req.Location,
		ImageURL:         req.ImageURL,
		OpenTo:           req.OpenTo,
		StartTime:        ParseDateTime(req.StartTime),
		EndTime:          ParseDateTime(req.EndTime),
		IsFree:           Truthy(req.IsFree),
		TicketPrice:      Number(req.TicketPrice),
		IsCustomLocation: Truthy(req.IsCustomLocation),
		CreatedBy:        ViewerEmail(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, _ := json.Marshal(map[string]interface{}{
		"message": "Event created successfully",
		"event":   event,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(body)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: body})
}

func (h *Handlers) ReserveSeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	// The body is optional when the identity proxy supplied the viewer.
	_ = json.NewDecoder(r.Body).Decode(&req)
	email := req.Email
	if email == "" {
		email = ViewerEmail(r.Context())
	}

	status, err := h.reservations.Reserve(r.Context(), chi.URLParam(r, "id"), email)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	message := "Reservation successful!"
	if status == service.StatusAlreadyReserved {
		message = "Already reserved this event."
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message, "status": string(status)})
}

func (h *Handlers) RegisterTicket(w http.ResponseWriter, r *http.Request) {
	if err := h.reservations.RegisterTicket(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ticket reserved successfully!"})
}

func (h *Handlers) ListOptIns(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = ViewerEmail(r.Context())
	}
	events, err := h.reservations.ListOptIns(r.Context(), email)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"events": events})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func (h *Handlers) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCoordinates),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrMissingEmail),
		errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrNoCampuses):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed: ", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
