package api

import "AdPulseAnalytics/internal/serviceiface"

type GatewayService struct {
	config map[string]interface{}
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	port := intFromConfig(s.config, "port", 8081)
	ingestPort := intFromConfig(s.config, "ingest_port", 7143)
	analyticsPort := intFromConfig(s.config, "analytics_port", 7243)
	go StartGateway(port, ingestPort, analyticsPort)
	return nil
}

func (s *GatewayService) Stop() error {
	return nil
}

func intFromConfig(cfg map[string]interface{}, key string, def int) int {
	if cfg == nil {
		return def
	}
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
