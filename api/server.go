// Package api exposes the pricing and chat services over HTTP.
package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"rental-pricing-ai/analysis"
	"rental-pricing-ai/chat"
)

// Server handles HTTP API requests
type Server struct {
	analysis *analysis.Service
	chat     *chat.Service
}

// NewServer creates a new API server instance. The chat service may be
// nil when the LLM is disabled; chat routes then answer 503.
func NewServer(analysisService *analysis.Service, chatService *chat.Service) *Server {
	return &Server{
		analysis: analysisService,
		chat:     chatService,
	}
}

// Handler builds the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pricing data routes
	mux.HandleFunc("POST /api/pricing/fetch", s.handleFetchPricing)
	mux.HandleFunc("POST /api/pricing/analyze", s.handleAnalyzePricing)
	mux.HandleFunc("GET /api/pricing/suggestions", s.handleSuggestionHistory)

	// Calendar and revenue routes
	mux.HandleFunc("GET /api/availability", s.handleAvailability)
	mux.HandleFunc("GET /api/revenue-forecast", s.handleRevenueForecast)

	// Chat routes
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/ws", s.handleChatWS)
	mux.HandleFunc("DELETE /api/chat/{id}", s.handleResetChat)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, s.Handler())
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"chat":        s.chat != nil,
		"server_time": time.Now().Format(time.RFC3339),
	})
}
