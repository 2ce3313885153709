// Package httpapi exposes the extraction pipeline over HTTP for
// callers that already have menu text in hand.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/platewise/menu-etl/internal/menuparse"
	"github.com/platewise/menu-etl/internal/store"
)

// MenuParser runs one document's text through the extraction pipeline.
type MenuParser interface {
	ParseMenu(ctx context.Context, menuText, restaurantName string) (menuparse.MenuExtractionResult, error)
}

// RunStore persists and retrieves extraction runs.
type RunStore interface {
	SaveResult(result menuparse.MenuExtractionResult, source string) (string, error)
	GetRun(runID string) (store.Run, menuparse.MenuExtractionResult, error)
	ListRuns(limit int) ([]store.Run, error)
}

type Server struct {
	parser MenuParser
	runs   RunStore
}

// NewServer wires the extraction endpoints. The store may be nil, in
// which case extractions run but are not persisted and run lookups 404.
func NewServer(parser MenuParser, runs RunStore) http.Handler {
	s := &Server{parser: parser, runs: runs}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/extractions", s.handleExtractions)
	mux.HandleFunc("/v1/extractions/", s.handleExtractionByID)
	mux.HandleFunc("/v1/schema", s.handleSchema)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

type extractionRequest struct {
	RestaurantName string `json:"restaurant_name"`
	MenuText       string `json:"menu_text"`
}

type extractionResponse struct {
	RunID  string                         `json:"run_id,omitempty"`
	Result menuparse.MenuExtractionResult `json:"result"`
}

func (s *Server) handleExtractions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExtraction(w, r)
	case http.MethodGet:
		s.handleListExtractions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateExtraction(w http.ResponseWriter, r *http.Request) {
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var req extractionRequest
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, http.StatusBadRequest, "decode body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.MenuText) == "" {
		writeError(w, http.StatusBadRequest, "menu_text is required")
		return
	}

	result, err := s.parser.ParseMenu(r.Context(), req.MenuText, strings.TrimSpace(req.RestaurantName))
	if err != nil {
		writeError(w, http.StatusBadGateway, "parse menu: "+err.Error())
		return
	}

	resp := extractionResponse{Result: result}
	if s.runs != nil {
		runID, err := s.runs.SaveResult(result, "http")
		if err != nil {
			// The extraction itself succeeded; return it anyway.
			log.Printf("httpapi: save run: %v", err)
		} else {
			resp.RunID = runID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "no store configured")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	runs, err := s.runs.ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleExtractionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "no store configured")
		return
	}
	runID := strings.TrimPrefix(r.URL.Path, "/v1/extractions/")
	if runID == "" || strings.Contains(runID, "/") {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	run, result, err := s.runs.GetRun(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "result": result})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, menuparse.SchemaJSON)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}
