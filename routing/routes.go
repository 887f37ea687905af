// Package routing exposes the agent tools over HTTP for local development.
// Each tool endpoint accepts the raw Bedrock Agent invocation event JSON
// and answers with the same envelope the Lambda would return.
package routing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medagent-tools/agent"
	"medagent-tools/logger"
)

type Response struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// ToolHandler is the shape shared by the three Lambda handlers.
type ToolHandler interface {
	Handle(ctx context.Context, event agent.InvocationEvent) (agent.Response, error)
}

func SetupRoutes(drugInfo, recoveryPlan, imageAnalysis ToolHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/api/medagent/healthcheck", HealthCheckHandler).Methods("GET")

	// Tool endpoints, taking the raw agent invocation event
	router.HandleFunc("/api/medagent/drug-info", toolEndpoint(drugInfo)).Methods("POST")
	router.HandleFunc("/api/medagent/recovery-plan", toolEndpoint(recoveryPlan)).Methods("POST")
	router.HandleFunc("/api/medagent/image-analysis", toolEndpoint(imageAnalysis)).Methods("POST")

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// 404 handler
	router.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	return router
}

func toolEndpoint(handler ToolHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.WithContext(r.Context())

		var event agent.InvocationEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			log.Warn("Invalid invocation event", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  "request body is not a valid agent invocation event",
				Status: http.StatusBadRequest,
			})
			return
		}

		response, err := handler.Handle(r.Context(), event)
		if err != nil {
			log.Error("Tool handler failed", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:  "internal error",
				Status: http.StatusInternalServerError,
			})
			return
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Message: "I'm OK",
		Status:  http.StatusOK,
	})
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	log.Warn("Resource not found", map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	})

	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error:  "resource not found",
		Status: http.StatusNotFound,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
