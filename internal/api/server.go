// Package api exposes the benefit analysis pipeline over HTTP: JSON
// calculation endpoints, the state registry, a health probe, and
// server-rendered charts. Handlers are stateless; every request runs the
// pipeline fresh.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/benefits-data/marginal.report/internal/sweep"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	pipeline *sweep.Pipeline
	version  string
}

func NewServer(pipeline *sweep.Pipeline, version string) *Server {
	return &Server{
		pipeline: pipeline,
		version:  version,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux registers the API routes. Paths are unprefixed; main mounts the
// mux under /api/.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/marginal-child", s.calculateMarginalChild)
	mux.HandleFunc("/cliff", s.calculateCliff)
	mux.HandleFunc("/calculate", s.calculatePoint)
	mux.HandleFunc("/states", s.listStates)
	mux.HandleFunc("/health", s.showHealth)
	mux.HandleFunc("/chart/marginal-child", s.showMarginalChildChart)
	mux.HandleFunc("/chart/cliff", s.showCliffChart)
	return mux
}
