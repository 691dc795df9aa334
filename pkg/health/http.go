package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregated health status as JSON. Healthy nodes
// answer 200, unhealthy nodes 503, so load balancers and probes can
// act on the status code alone.
func (s *Service) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := s.Evaluate(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(status); err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode health status")
		}
	})
}
