package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
	driveSvc "mentorportal/internal/domain/services/drive"
	"mentorportal/internal/metrics"
)

// DocxExtension is the only file type the analysis backend accepts.
const DocxExtension = ".docx"

// UploadAnalyzer analyzes documents that are not stored anywhere. It holds no
// state; results are returned to the caller only.
type UploadAnalyzer struct {
	analysis      driveSvc.AnalysisBackend
	defaultTeamID string
	logger        *slog.Logger
}

// NewUploadAnalyzer creates an analyzer that falls back to defaultTeamID.
func NewUploadAnalyzer(analysis driveSvc.AnalysisBackend, defaultTeamID string, logger *slog.Logger) *UploadAnalyzer {
	return &UploadAnalyzer{
		analysis:      analysis,
		defaultTeamID: defaultTeamID,
		logger:        logger.With("component", "upload_analyzer"),
	}
}

// AnalyzeUpload sends a .docx file for analysis. An empty teamID uses the
// configured default.
func (a *UploadAnalyzer) AnalyzeUpload(ctx context.Context, filename string, content io.Reader, teamID string) (*drive.AnalysisResult, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if !strings.EqualFold(filepath.Ext(filename), DocxExtension) {
		return nil, fmt.Errorf("%w: only %s files can be analyzed", domain.ErrValidation, DocxExtension)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: file content is required", domain.ErrValidation)
	}

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		teamID = a.defaultTeamID
	}

	result, err := a.analysis.AnalyzeUpload(ctx, filename, content, teamID)
	if err != nil {
		metrics.RecordAnalysis("upload", "error")
		a.logger.Error("upload analysis failed", "filename", filename, "error", err)
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	metrics.RecordAnalysis("upload", "success")
	a.logger.Info("upload analysis completed", "filename", filename, "team_id", teamID)
	return result, nil
}
