package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"AdPulseAnalytics/internal/logger"
)

// NewRouter builds the gateway router: auth endpoints, health check, and
// reverse proxies for the domain services.
func NewRouter(ingestPort, analyticsPort int) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/auth/login", LoginHandler).Methods("POST")
	router.HandleFunc("/auth/logout", LogoutHandler).Methods("POST")
	router.HandleFunc("/get-sessions", GetSessionsHandler).Methods("GET")
	router.HandleFunc("/health", HealthHandler).Methods("GET")

	router.PathPrefix("/ingest/").Handler(createReverseProxy(fmt.Sprintf("http://localhost:%d", ingestPort)))
	router.PathPrefix("/analytics/").Handler(createReverseProxy(fmt.Sprintf("http://localhost:%d", analyticsPort)))

	router.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	return router
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("API Gateway is healthy"))
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	audit(logger.GlobalLogger, "[Gateway] [Error] "+r.URL.Path+" from "+r.RemoteAddr+" (route not found)")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("404 - Route not found"))
}
