package api

import (
	"hos-trip-service/internal/api/handlers"
	"net/http"
)

// NewRouter registers the HTTP routes and wraps them in the request-id and
// logging middleware. Handlers stay unaware of concrete adapters.
func NewRouter(trips *handlers.TripHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /calculate-route", trips.CalculateRoute)
	mux.HandleFunc("POST /trips", trips.Create)
	mux.HandleFunc("POST /trips/create", trips.Create)
	mux.HandleFunc("POST /trips/create/{$}", trips.Create)
	mux.HandleFunc("GET /trips", trips.List)
	mux.HandleFunc("GET /trips/{id}", trips.Get)
	mux.HandleFunc("GET /log-sheets/{id}", trips.GetLogSheet)

	return requestIDMiddleware(loggingMiddleware(mux))
}
