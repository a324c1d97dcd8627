package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sharawey74/PhishSniffer/internal/classifier"
	"github.com/Sharawey74/PhishSniffer/internal/heuristic"
	"github.com/Sharawey74/PhishSniffer/internal/model"
	"github.com/Sharawey74/PhishSniffer/internal/pipeline"
)

// allowedUploadExtensions are the file types the upload endpoint accepts.
var allowedUploadExtensions = []string{".eml", ".txt", ".msg"}

// errorResponse is the uniform JSON error body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// analysisResponse is the JSON body returned by the analysis endpoints.
type analysisResponse struct {
	IsPhishing       bool     `json:"is_phishing"`
	Probability      float64  `json:"probability"`
	Prediction       float64  `json:"prediction"`
	ConfidenceLevel  string   `json:"confidence_level"`
	RiskFactors      []string `json:"risk_factors"`
	FeaturesDetected []string `json:"features_detected"`
	Timestamp        string   `json:"timestamp"`
	AnalysisID       string   `json:"analysis_id,omitempty"`
}

// analyzeTextRequest is the body of POST /api/v1/analyze/text.
type analyzeTextRequest struct {
	EmailContent string `json:"email_content"`

	// Options are accepted for compatibility but currently all analyses
	// include details and URL extraction.
	Options map[string]any `json:"options,omitempty"`
}

// thresholdRequest is the body of PUT /api/v1/models/threshold.
type thresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

// urlAnalysis is one entry of the URL check response.
type urlAnalysis struct {
	URL          string   `json:"url"`
	IsSuspicious bool     `json:"is_suspicious"`
	RiskFactors  []string `json:"risk_factors"`
	Domain       string   `json:"domain"`
	SafetyScore  float64  `json:"safety_score"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":       "healthy",
		"service":      apiService,
		"version":      apiVersion,
		"model_loaded": s.predictor.HasTrainedModel(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("%s v%s", apiService, apiVersion),
		"description": "Email phishing analysis service",
		"endpoints": map[string]string{
			"health":           "/api/health",
			"analyze_text":     "/api/v1/analyze/text",
			"analyze_file":     "/api/v1/analyze/file",
			"models_info":      "/api/v1/models/info",
			"models_available": "/api/v1/models/available",
			"urls_analyze":     "/api/v1/urls/analyze",
		},
	})
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req analyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			"invalid JSON request body")
		return
	}

	if strings.TrimSpace(req.EmailContent) == "" {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			"email content cannot be empty")
		return
	}

	report, err := s.analyze(r.Context(), "text input", []byte(req.EmailContent))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			fmt.Sprintf("analysis failed: %v", err))
		return
	}

	s.writeJSON(w, r, http.StatusOK, toAnalysisResponse(report))
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			"missing or invalid file upload")
		return
	}
	defer file.Close() //nolint:errcheck // read-only file handle

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !isAllowedExtension(ext) {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("unsupported file type %q: allowed types are %s",
				ext, strings.Join(allowedUploadExtensions, ", ")))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			"could not read uploaded file")
		return
	}

	report, err := s.analyze(r.Context(), header.Filename, content)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			fmt.Sprintf("file analysis failed: %v", err))
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"filename":  header.Filename,
		"file_size": len(content),
		"analysis":  toAnalysisResponse(report),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if !s.predictor.HasTrainedModel() {
		s.writeError(w, r, http.StatusNotFound, "Not Found",
			"no trained model is loaded")
		return
	}

	info := map[string]any{
		"model_type":            "logistic",
		"threshold":             s.predictor.Threshold(),
		"has_feature_extractor": true,
	}
	if md := s.predictor.Metadata(); md != nil {
		if md.ModelType != "" {
			info["model_type"] = md.ModelType
		}
		info["metadata"] = md
	}

	s.writeJSON(w, r, http.StatusOK, info)
}

func (s *Server) handleModelsAvailable(w http.ResponseWriter, r *http.Request) {
	names, err := classifier.AvailableModels(s.cfg.ModelDir)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			fmt.Sprintf("failed to list models: %v", err))
		return
	}

	models := make([]map[string]any, 0, len(names))
	for _, name := range names {
		entry := map[string]any{"name": name}
		if loaded, err := classifier.LoadModel(s.cfg.ModelDir, name); err == nil && loaded.Metadata != nil {
			entry["metadata"] = loaded.Metadata
		}
		models = append(models, entry)
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			"invalid JSON request body")
		return
	}

	if err := s.predictor.SetThreshold(req.Threshold); err != nil {
		if errors.Is(err, classifier.ErrThresholdRange) {
			s.writeError(w, r, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			err.Error())
		return
	}

	s.logger.Info("threshold updated", "threshold", req.Threshold)
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"threshold": req.Threshold,
		"message":   "threshold updated",
	})
}

func (s *Server) handleAnalyzeURLs(w http.ResponseWriter, r *http.Request) {
	var urls []string
	if err := json.NewDecoder(r.Body).Decode(&urls); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request",
			"request body must be a JSON array of URLs")
		return
	}

	analyses := make([]urlAnalysis, 0, len(urls))
	for _, raw := range urls {
		record := heuristic.AssessURL(raw)
		analyses = append(analyses, urlAnalysis{
			URL:          record.URL,
			IsSuspicious: record.RiskLevel != model.RiskLow,
			RiskFactors:  emptyIfNil(record.RiskFactors),
			Domain:       record.Domain,
			SafetyScore:  record.SafetyScore,
		})

		// Flagged URLs go to the database for later review.
		if s.db != nil && record.RiskLevel != model.RiskLow {
			record.Source = "api"
			if err := s.db.UpsertURL(r.Context(), record); err != nil {
				s.logger.Warn("failed to store url", "url", record.URL, "error", err)
			}
		}
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"url_analyses": analyses})
}

// analyze runs the full analysis pipeline on raw message bytes.
func (s *Server) analyze(ctx context.Context, source string, raw []byte) (*model.AnalysisReport, error) {
	p := pipeline.New(pipeline.WithLogger(s.logger))
	p.AddSteps(
		pipeline.NewParseRawStep(raw),
		pipeline.NewHeuristicStep(s.analyzer, s.cfg.File),
		pipeline.NewClassifyStep(s.predictor),
		pipeline.NewOverrideStep(),
	)
	if s.db != nil {
		p.AddStep(pipeline.NewStoreStep(s.db))
	} else {
		p.AddStep(pipeline.NewSummarizeStep())
	}

	report := model.NewAnalysisReport(source)
	if err := p.Execute(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// toAnalysisResponse converts a report to the API response shape.
func toAnalysisResponse(report *model.AnalysisReport) analysisResponse {
	return analysisResponse{
		IsPhishing:       report.IsPhishing,
		Probability:      report.Probability,
		Prediction:       report.Prediction,
		ConfidenceLevel:  report.ConfidenceLevel,
		RiskFactors:      emptyIfNil(report.RiskFactors),
		FeaturesDetected: emptyIfNil(report.FeaturesDetected),
		Timestamp:        report.DateAnalyzed.Format(time.RFC3339),
		AnalysisID:       report.AnalysisID,
	}
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response",
			"path", r.URL.Path,
			"error", err,
		)
	}
}

// writeError writes the uniform JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	s.writeJSON(w, r, status, errorResponse{
		Error:   title,
		Message: message,
		Path:    r.URL.Path,
	})
}

// isAllowedExtension reports whether ext is an accepted upload type.
func isAllowedExtension(ext string) bool {
	for _, allowed := range allowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// emptyIfNil turns a nil slice into an empty one so JSON output uses []
// instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
