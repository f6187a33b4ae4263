package web

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"PriceBox/internal/chart"
	"PriceBox/internal/metrics"
	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
)

//go:embed static/index.html
var indexHTML []byte

// Response statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// SelectionRequest is one selection as sent by the page, either as query
// parameters or as a websocket message.
type SelectionRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ChartResponse carries either a figure or the message to show instead.
type ChartResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Figure  *chart.Figure `json:"figure,omitempty"`
}

// Server is the interactive viewer. The dataset is read-only, so handlers
// share it without locking.
type Server struct {
	Dataset      *model.Dataset
	Chart        chart.Options
	DefaultStart model.Clock
	DefaultEnd   model.Clock
	Metrics      *metrics.Metrics

	started time.Time
}

// NewServer creates a Server for ds.
func NewServer(ds *model.Dataset, opts chart.Options, start, end model.Clock, m *metrics.Metrics) *Server {
	return &Server{
		Dataset:      ds,
		Chart:        opts,
		DefaultStart: start,
		DefaultEnd:   end,
		Metrics:      m,
		started:      time.Now(),
	}
}

// Routes registers all endpoints on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/dates", s.handleDates)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /chart.png", s.handlePNG)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] web viewer listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("[INFO] web viewer stopped")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

type datesResponse struct {
	Instrument   string   `json:"instrument"`
	Min          string   `json:"min"`
	Max          string   `json:"max"`
	Dates        []string `json:"dates"`
	DefaultStart string   `json:"default_start"`
	DefaultEnd   string   `json:"default_end"`
}

func (s *Server) handleDates(w http.ResponseWriter, _ *http.Request) {
	dates := s.Dataset.Dates()
	resp := datesResponse{
		Instrument:   s.Chart.Instrument,
		Dates:        make([]string, len(dates)),
		DefaultStart: s.DefaultStart.String(),
		DefaultEnd:   s.DefaultEnd.String(),
	}
	for i, d := range dates {
		resp.Dates[i] = d.Format(model.DateLayout)
	}
	if len(dates) > 0 {
		resp.Min = resp.Dates[0]
		resp.Max = resp.Dates[len(dates)-1]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	_, resp, code := s.evaluate("http", queryRequest(r))
	writeJSON(w, code, resp)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	res, resp, code := s.evaluate("png", queryRequest(r))
	if res == nil {
		if code == http.StatusOK {
			code = http.StatusNotFound
		}
		writeJSON(w, code, resp)
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, resp.Figure, s.Chart.PNGFont); err != nil {
		log.Printf("[ERROR] render png: %v", err)
		writeJSON(w, http.StatusInternalServerError, ChartResponse{Status: StatusError, Message: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := map[string]interface{}{
		"status":     "ok",
		"uptime_sec": int64(time.Since(s.started).Seconds()),
		"records":    s.Dataset.Len(),
		"dates":      len(s.Dataset.Dates()),
		"ts":         time.Now().UTC().Format(time.RFC3339),
	}
	if s.Dataset.Len() > 0 {
		health["min"] = s.Dataset.MinDate().Format(model.DateLayout)
		health["max"] = s.Dataset.MaxDate().Format(model.DateLayout)
	}
	writeJSON(w, http.StatusOK, health)
}

func queryRequest(r *http.Request) SelectionRequest {
	q := r.URL.Query()
	return SelectionRequest{Date: q.Get("date"), Start: q.Get("start"), End: q.Get("end")}
}

// evaluate runs one selection. Blank fields take the page defaults: the
// earliest date and the configured window. A nil result means resp carries
// the message to show; code is the HTTP status for it.
func (s *Server) evaluate(surface string, req SelectionRequest) (*pipeline.Result, ChartResponse, int) {
	if req.Date == "" && s.Dataset.Len() > 0 {
		req.Date = s.Dataset.MinDate().Format(model.DateLayout)
	}
	if req.Start == "" {
		req.Start = s.DefaultStart.String()
	}
	if req.End == "" {
		req.End = s.DefaultEnd.String()
	}

	started := time.Now()
	sel, err := pipeline.ParseSelection(req.Date, req.Start, req.End)
	var res *pipeline.Result
	if err == nil {
		res, err = pipeline.Run(s.Dataset, sel)
	}
	if s.Metrics != nil {
		s.Metrics.ObserveRun(surface, time.Since(started), res, err)
	}

	switch {
	case err == nil:
		return res, ChartResponse{Status: StatusOK, Figure: chart.Build(res, s.Chart)}, http.StatusOK
	case pipeline.IsWarning(err):
		log.Printf("[WARN] %s: %v", surface, err)
		return nil, ChartResponse{Status: StatusWarning, Message: pipeline.UserMessage(err, req.Date)}, http.StatusOK
	case pipeline.IsInputError(err):
		log.Printf("[WARN] %s: %v", surface, err)
		return nil, ChartResponse{Status: StatusError, Message: pipeline.UserMessage(err, req.Date)}, http.StatusBadRequest
	default:
		log.Printf("[ERROR] %s: %v", surface, err)
		return nil, ChartResponse{Status: StatusError, Message: pipeline.UserMessage(err, req.Date)}, http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}
