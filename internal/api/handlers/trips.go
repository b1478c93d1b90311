package handlers

import (
	"encoding/json"
	"hos-trip-service/internal/api/dto"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"hos-trip-service/internal/services"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripHandler serves route calculation, trip scheduling and trip retrieval.
// Publisher is optional.
type TripHandler struct {
	Repo      ports.TripRepository
	Provider  ports.DistanceProvider
	Publisher ports.TripEventPublisher
	Rules     services.Rules

	// Location is the time zone log sheet days and response timestamps use.
	Location          *time.Location
	DefaultDriverName string
	DefaultVehicleID  string
	Now               func() time.Time
}

func (h *TripHandler) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func (h *TripHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// CalculateRoute plans a trip from query parameters without saving it.
func (h *TripHandler) CalculateRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := services.TripRequest{
		CurrentLocation: q.Get("current_location"),
		PickupLocation:  q.Get("pickup_location"),
		DropoffLocation: q.Get("dropoff_location"),
		StartAt:         h.now(),
	}

	if raw := strings.TrimSpace(q.Get("current_cycle_hours")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeServiceError(w, r, "calculate route", domain.NewValidationError("current_cycle_hours", "must be a number"))
			return
		}
		req.CurrentCycleHours = v
	}

	if raw := strings.TrimSpace(q.Get("start_at")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeServiceError(w, r, "calculate route", domain.NewValidationError("start_at", "must be an RFC 3339 timestamp"))
			return
		}
		req.StartAt = t
	}
	req.StartAt = req.StartAt.In(h.location())

	plan, err := services.CalculateRoute(r.Context(), req, h.Provider, h.Rules)
	if err != nil {
		writeServiceError(w, r, "calculate route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(plan, h.location()))
}

// Create schedules a trip, saves it with its log sheets and announces it.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateTripRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	start := h.now()
	if body.StartAt != nil {
		start = *body.StartAt
	}

	req := services.TripRequest{
		CurrentLocation:   body.CurrentLocation,
		PickupLocation:    body.PickupLocation,
		DropoffLocation:   body.DropoffLocation,
		CurrentCycleHours: body.CurrentCycleHours,
		StartAt:           start.In(h.location()),
		DriverName:        body.DriverName,
		VehicleID:         body.VehicleID,
	}
	if strings.TrimSpace(req.DriverName) == "" {
		req.DriverName = h.DefaultDriverName
	}
	if strings.TrimSpace(req.VehicleID) == "" {
		req.VehicleID = h.DefaultVehicleID
	}

	trip, err := services.CreateTripSchedule(r.Context(), req, h.Provider, h.Rules)
	if err != nil {
		writeServiceError(w, r, "create trip", err)
		return
	}

	rec := domain.NewTripRecord(trip)
	if err := h.Repo.SaveTrip(r.Context(), rec); err != nil {
		writeServiceError(w, r, "save trip", err)
		return
	}

	if h.Publisher != nil {
		// The trip is saved; a failed notification does not fail the request.
		if err := h.Publisher.PublishTripScheduled(r.Context(), domain.NewTripScheduledEvent(rec)); err != nil {
			log.Printf("publish trip scheduled failed: req_id=%s trip_id=%s err=%v", obs.RequestID(r.Context()), rec.ID, err)
		}
	}

	res := dto.CreateTripResponse{
		Trip:      dto.NewTripResponse(rec, h.location()),
		RouteData: dto.NewRouteResponse(&trip.Route, h.location()),
		Message:   "Trip created successfully",
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.Repo.ListTrips(r.Context())
	if err != nil {
		writeServiceError(w, r, "list trips", err)
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripResponse, 0, len(trips))}
	for _, t := range trips {
		res.Trips = append(res.Trips, dto.NewTripResponse(t, h.location()))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := h.Repo.GetTrip(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get trip", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTripResponse(trip, h.location()))
}

func (h *TripHandler) GetLogSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sheet, err := h.Repo.GetLogSheet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get log sheet", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewLogSheetResponse(sheet, h.location()))
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
