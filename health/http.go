package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the JSON body of the detailed health endpoint.
type Response struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON form of a single Result.
type CheckResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	PingLatency string   `json:"ping_latency,omitempty"`
	Details     *Details `json:"details,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewResponse converts results into a Response.
func NewResponse(results map[string]Result) Response {
	resp := Response{
		Status:    OverallStatus(results).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckResponse, len(results)),
	}
	for name, r := range results {
		check := CheckResponse{
			Status:   r.Status.String(),
			Message:  r.Message,
			Duration: r.Duration.String(),
		}
		if r.Details.PingLatency > 0 {
			check.PingLatency = r.Details.PingLatency.String()
		}
		if d := r.Details; !d.empty() {
			check.Details = &d
		}
		if r.Error != nil {
			check.Error = r.Error.Error()
		}
		resp.Checks[name] = check
	}
	return resp
}

func (d Details) empty() bool {
	return !d.Unavailable && len(d.Scripts) == 0 && d.Circuit == "" && d.Failures == 0 && d.Rejected == 0
}

// HTTPStatus maps a health status to a response code. Degraded is still
// ready: an open circuit means slower results, not failed ones.
func HTTPStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// LivenessHandler answers 200 as long as the process serves HTTP.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs all checks and answers with the overall status.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := OverallStatus(agg.CheckAll(r.Context()))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(HTTPStatus(status))
		_, _ = w.Write([]byte(status.String()))
	}
}

// DetailedHandler runs all checks and answers with a JSON Response.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(HTTPStatus(OverallStatus(results)))
		_ = json.NewEncoder(w).Encode(NewResponse(results))
	}
}

// RegisterHandlers registers /healthz, /readyz and /health on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
}
