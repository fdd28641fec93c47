package ingest

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"AdPulseAnalytics/api"
	"AdPulseAnalytics/internal/serviceiface"
)

type IngestService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewIngestService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &IngestService{config: cfg, pool: pool}
}

func (s *IngestService) Name() string { return "ingest" }

func (s *IngestService) Start() error {
	port := 7143
	if s.config != nil {
		if p, ok := s.config["port"].(int); ok && p > 0 {
			port = p
		}
	}
	go StartIngestService(s.pool, port)
	return nil
}

func (s *IngestService) Stop() error {
	return nil
}

// StartIngestService runs the ingestion HTTP server.
func StartIngestService(pool *pgxpool.Pool, port int) {
	store := NewPgUploadStore(pool)

	router := mux.NewRouter()
	router.Handle("/ingest/validate", api.SessionMiddleware(ValidateUpload())).Methods("POST")
	router.Handle("/ingest/upload", api.SessionMiddleware(UploadCampaignData(store))).Methods("POST")
	router.Handle("/ingest/uploads", api.SessionMiddleware(ListUploads(store))).Methods("POST")
	router.Handle("/ingest/uploads/detail", api.SessionMiddleware(GetUploadDetail(store))).Methods("POST")
	router.Handle("/ingest/uploads/delete", api.SessionMiddleware(DeleteUpload(store))).Methods("POST")
	router.Handle("/ingest/uploads/export", api.SessionMiddleware(ExportUpload(store))).Methods("GET")
	router.HandleFunc("/ingest/template", DownloadTemplate()).Methods("GET")
	router.HandleFunc("/ingest/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Ingest Service"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Ingest Service started on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Ingest Service failed: %v", err)
	}
}
