package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
	"github.com/Banumathkovinda/web-app-security-tester/internal/pipeline"
	"github.com/Banumathkovinda/web-app-security-tester/internal/report"
)

// scanRequest is the POST /api/scan request body.
type scanRequest struct {
	// URL is the target to scan. Required.
	URL string `json:"url"`

	// ScanTypes selects the scan modes ("recon", "browser", "burp",
	// "all"). Empty means all.
	ScanTypes []string `json:"scan_types,omitempty"`

	// UseBurp opts the scan into Burp proxy routing. Burp never runs
	// without it unless "burp" is listed in ScanTypes explicitly.
	UseBurp bool `json:"use_burp,omitempty"`

	// UseBrowser is a shorthand toggle equivalent to adding "browser"
	// to ScanTypes.
	UseBrowser bool `json:"use_browser,omitempty"`
}

// scanTypes merges the browser toggle into the scan type list.
// An empty list already selects every mode, so the toggle only matters
// when the caller narrowed the selection. The burp toggle is passed to
// the manager separately because burp must stay off on default scans.
func (r scanRequest) scanTypes() []string {
	types := r.ScanTypes
	if len(types) == 0 {
		return nil
	}
	if r.UseBrowser && !containsScanType(types, config.ScanTypeBrowser) {
		types = append(types, config.ScanTypeBrowser)
	}
	return types
}

func containsScanType(types []string, want string) bool {
	for _, t := range types {
		if t == want || t == config.ScanTypeAll {
			return true
		}
	}
	return false
}

// scanResponse is the POST /api/scan response body.
// On serverless platforms Report carries the finished scan; on a full
// host only the identifiers are set and callers poll the status endpoint.
type scanResponse struct {
	ScanID string            `json:"scan_id"`
	Status model.Status      `json:"status"`
	Report *model.ScanReport `json:"report,omitempty"`
}

// statusResponse is the scan status endpoint's body.
type statusResponse struct {
	ScanID         string       `json:"scan_id"`
	TargetURL      string       `json:"target_url"`
	Status         model.Status `json:"status"`
	CurrentMessage string       `json:"current_message,omitempty"`
	Findings       int          `json:"findings"`
	Error          string       `json:"error,omitempty"`
}

// errorResponse is the JSON body for error status codes.
type errorResponse struct {
	Error string `json:"error"`
}

// handleScan launches a scan for the requested target.
// Responds 202 with the scan ID on a full host, or 200 with the full
// report on serverless platforms where the scan ran synchronously.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be JSON with a url field")
		return
	}
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	scanReport, err := s.manager.StartScan(r.Context(), req.URL, req.scanTypes(), req.UseBurp)
	switch {
	case errors.Is(err, ErrInvalidTarget):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, config.ErrInvalidScanType):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, pipeline.ErrBrowserUnavailable):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to start scan", "target", req.URL, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to start scan")
		return
	}

	resp := scanResponse{
		ScanID: scanReport.ScanID,
		Status: scanReport.Status,
	}

	status := http.StatusAccepted
	if s.caps.Serverless {
		// The scan already finished; hand the report back directly.
		status = http.StatusOK
		resp.Report = scanReport
	}

	s.writeJSON(w, status, resp)
}

// handleStatus reports the current state of a scan.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	scanID := r.PathValue("id")

	scanReport, err := s.manager.GetReport(r.Context(), scanID)
	if err != nil {
		s.logger.Error("failed to load scan", "scan_id", scanID, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}
	if scanReport == nil {
		s.writeError(w, http.StatusNotFound, "unknown scan ID")
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{
		ScanID:         scanReport.ScanID,
		TargetURL:      scanReport.TargetURL,
		Status:         scanReport.Status,
		CurrentMessage: scanReport.CurrentMessage,
		Findings:       scanReport.TotalFindings(),
		Error:          scanReport.ErrorMessage,
	})
}

// handleReport renders a stored report in the requested format.
// The format query parameter selects json (default), simple, markdown,
// html, or pdf.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	scanID := r.PathValue("id")

	scanReport, err := s.manager.GetReport(r.Context(), scanID)
	if err != nil {
		s.logger.Error("failed to load scan", "scan_id", scanID, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}
	if scanReport == nil {
		s.writeError(w, http.StatusNotFound, "unknown scan ID")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	writer, err := report.NewWriter(format, w)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unsupported report format: "+format)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	if _, err := writer.Write(scanReport); err != nil {
		s.logger.Error("failed to render report", "scan_id", scanID, "format", format, "error", err.Error())
	}
}

// handleHistory lists past scans, optionally filtered by target.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	history, err := s.manager.History(r.Context(), target, limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"scans": history,
		"count": len(history),
	})
}

// handleHealthz reports liveness and the platform's capability profile.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"platform":           s.caps.Platform,
		"serverless":         s.caps.Serverless,
		"browser_automation": s.caps.BrowserAutomation,
		"persistent_storage": s.caps.PersistentStorage,
	})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err.Error())
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// contentTypeFor maps report formats to response content types.
func contentTypeFor(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "markdown", "md":
		return "text/markdown; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	case "pdf":
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}
