package analytics

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"AdPulseAnalytics/api"
	"AdPulseAnalytics/internal/serviceiface"
)

type AnalyticsService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewAnalyticsService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &AnalyticsService{config: cfg, pool: pool}
}

func (s *AnalyticsService) Name() string { return "analytics" }

func (s *AnalyticsService) Start() error {
	port := 7243
	if s.config != nil {
		if p, ok := s.config["port"].(int); ok && p > 0 {
			port = p
		}
	}
	go StartAnalyticsService(s.pool, port)
	return nil
}

func (s *AnalyticsService) Stop() error {
	return nil
}

// StartAnalyticsService runs the chart-aggregation HTTP server.
func StartAnalyticsService(pool *pgxpool.Pool, port int) {
	router := mux.NewRouter()
	router.Handle("/analytics/summary", api.SessionMiddleware(Summary(pool))).Methods("POST")
	router.Handle("/analytics/daily", api.SessionMiddleware(Daily(pool))).Methods("POST")
	router.Handle("/analytics/campaigns", api.SessionMiddleware(Campaigns(pool))).Methods("POST")
	router.HandleFunc("/analytics/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Analytics Service"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Analytics Service started on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Analytics Service failed: %v", err)
	}
}
