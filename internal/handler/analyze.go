package handler

import (
	"log/slog"
	"net/http"

	"mentorportal/internal/httputil"
	"mentorportal/internal/service/analysis"
	"mentorportal/internal/service/report"
)

// AnalyzeHandler runs one-off analyses of uploaded documents. Nothing is
// stored; the report is returned directly.
type AnalyzeHandler struct {
	analyzer       *analysis.UploadAnalyzer
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer *analysis.UploadAnalyzer, maxUploadBytes int64, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// AnalyzeResponse is the notice plus the rendered report.
type AnalyzeResponse struct {
	Notice httputil.Notice `json:"notice"`
	Report *report.Report  `json:"report"`
}

// Analyze analyzes an uploaded .docx
// POST /api/analyze (multipart "file", optional "team_id")
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	upload, err := httputil.ParseFile(w, r, "file", h.maxUploadBytes)
	if err != nil {
		badRequest(w, err)
		return
	}
	defer upload.File.Close()

	result, err := h.analyzer.AnalyzeUpload(r.Context(), upload.Filename, upload.File, r.FormValue("team_id"))
	if err != nil {
		handleError(w, err)
		return
	}

	rep, err := report.Build(result)
	if err != nil {
		h.logger.Error("analysis payload unreadable", "filename", upload.Filename, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, AnalyzeResponse{
		Notice: httputil.SuccessNotice("Analysis completed"),
		Report: rep,
	})
}
