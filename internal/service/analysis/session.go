// Package analysis holds the per-session analysis state machine: which
// document is selected, whether its report is being produced or loaded, and
// the report once it arrives.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
	driveSvc "mentorportal/internal/domain/services/drive"
	"mentorportal/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// State is the session's position in the analysis workflow.
type State string

const (
	StateIdle               State = "idle"
	StateSelectedUnanalyzed State = "selected-unanalyzed"
	StateAnalyzing          State = "analyzing"
	StateLoadingExisting    State = "loading-existing"
	StateShowingReport      State = "showing-report"
	StateError              State = "error"
)

// Busy reports whether a request is in flight in this state.
func (s State) Busy() bool {
	return s == StateAnalyzing || s == StateLoadingExisting
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	State         State                 `json:"state"`
	Selected      *drive.DocumentNode   `json:"selected,omitempty"`
	ReportVisible bool                  `json:"report_visible"`
	Result        *drive.AnalysisResult `json:"-"`
	Error         string                `json:"error,omitempty"`
}

// Session is the analysis state of one browser session.
//
// Analyze and ViewAnalysis are serialized: while one is in flight a second
// fails with domain.ErrConflict. Select and Clear always succeed; a response
// that arrives after the selection moved on is dropped, so the held result
// always belongs to the selected document.
type Session struct {
	storage  driveSvc.StorageBackend
	analysis driveSvc.AnalysisBackend
	logger   *slog.Logger

	// afterAnalysis runs once a new analysis has been stored and the document
	// marked processed (normally a tree refresh)
	afterAnalysis func(ctx context.Context) error

	mu       sync.Mutex
	state    State
	selected *drive.DocumentNode
	result   *drive.AnalysisResult
	visible  bool
	lastErr  string
	inFlight bool
	// gen changes on every selection change; responses carrying a stale gen
	// are discarded
	gen uint64
}

// NewSession creates an idle session. afterAnalysis may be nil.
func NewSession(
	storage driveSvc.StorageBackend,
	analysis driveSvc.AnalysisBackend,
	afterAnalysis func(ctx context.Context) error,
	logger *slog.Logger,
) *Session {
	return &Session{
		storage:       storage,
		analysis:      analysis,
		afterAnalysis: afterAnalysis,
		logger:        logger.With("component", "analysis_session"),
		state:         StateIdle,
	}
}

// Select makes doc the selected document and drops any held result.
func (s *Session) Select(doc drive.DocumentNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(doc)
	s.state = StateSelectedUnanalyzed
}

// Clear deselects and hides the report.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.selected = nil
	s.result = nil
	s.visible = false
	s.lastErr = ""
	s.state = StateIdle
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:         s.state,
		ReportVisible: s.visible,
		Result:        s.result,
		Error:         s.lastErr,
	}
	if s.selected != nil {
		doc := *s.selected
		snap.Selected = &doc
	}
	return snap
}

// IsSelected reports whether docID is the selected document.
func (s *Session) IsSelected(docID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected != nil && s.selected.ID == docID
}

// Open runs the action a document card offers: view the stored analysis of a
// processed document, analyze an unprocessed one.
func (s *Session) Open(ctx context.Context, doc drive.DocumentNode, teamID string) error {
	if doc.Processed {
		return s.ViewAnalysis(ctx, doc)
	}
	return s.Analyze(ctx, doc, teamID)
}

// Analyze creates a new analysis of doc on the analysis backend, then marks
// the document processed and runs the after-analysis hook. Failures of those
// follow-up steps are returned as *domain.FollowUpError and leave the report
// in place.
func (s *Session) Analyze(ctx context.Context, doc drive.DocumentNode, teamID string) error {
	err := validation.Errors{
		"file_id": validation.Validate(doc.FileID, validation.Required),
		"team_id": validation.Validate(teamID, validation.Required),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	gen, err := s.begin(doc, StateAnalyzing)
	if err != nil {
		return err
	}
	defer s.finish()

	result, err := s.analysis.AnalyzeStored(ctx, doc.FileID, teamID)
	if err != nil {
		metrics.RecordAnalysis("analyze", "error")
		s.fail(gen, err)
		s.logger.Error("analysis failed", "document_id", doc.ID, "file_id", doc.FileID, "error", err)
		return fmt.Errorf("failed to analyze document: %w", err)
	}

	metrics.RecordAnalysis("analyze", "success")
	s.show(gen, result)
	s.logger.Info("analysis completed", "document_id", doc.ID, "team_id", teamID)

	// The analysis is persisted whether or not the selection moved on or the
	// caller went away, so the follow-ups always run, in order.
	followCtx := context.WithoutCancel(ctx)
	var followUps []error
	if err := s.storage.MarkProcessed(followCtx, doc.ID); err != nil {
		s.logger.Warn("failed to mark document processed", "document_id", doc.ID, "error", err)
		followUps = append(followUps, fmt.Errorf("mark processed: %w", err))
	}
	if s.afterAnalysis != nil {
		if err := s.afterAnalysis(followCtx); err != nil {
			s.logger.Warn("after-analysis refresh failed", "document_id", doc.ID, "error", err)
			followUps = append(followUps, fmt.Errorf("refresh: %w", err))
		}
	}
	if len(followUps) > 0 {
		return &domain.FollowUpError{
			Operation: "analysis",
			Step:      "follow-up",
			Err:       errors.Join(followUps...),
		}
	}
	return nil
}

// ViewAnalysis shows the stored analysis of doc. When doc is already selected
// and its result is held, only the report visibility flips and no request is
// made. Any failure to load, including a missing analysis, clears the
// selection.
func (s *Session) ViewAnalysis(ctx context.Context, doc drive.DocumentNode) error {
	s.mu.Lock()
	if !s.inFlight && s.selected != nil && s.selected.ID == doc.ID && s.result != nil {
		s.visible = !s.visible
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := validation.Validate(doc.FileID, validation.Required); err != nil {
		return fmt.Errorf("%w: file_id: %v", domain.ErrValidation, err)
	}

	gen, err := s.begin(doc, StateLoadingExisting)
	if err != nil {
		return err
	}
	defer s.finish()

	result, err := s.storage.GetAnalysis(ctx, doc.FileID)
	if err != nil {
		metrics.RecordAnalysis("view", "error")
		s.fail(gen, err)
		s.logger.Error("failed to load analysis", "document_id", doc.ID, "file_id", doc.FileID, "error", err)
		return fmt.Errorf("failed to load analysis: %w", err)
	}

	metrics.RecordAnalysis("view", "success")
	s.show(gen, result)
	return nil
}

// begin claims the session for one request.
func (s *Session) begin(doc drive.DocumentNode, state State) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return 0, &domain.ConflictError{
			Message:      "another analysis is already in progress",
			ResourceType: "analysis",
			ResourceID:   s.inFlightDocID(),
		}
	}
	s.inFlight = true
	s.selectLocked(doc)
	s.state = state
	return s.gen, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *Session) show(gen uint64, result *drive.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.result = result
	s.visible = true
	s.state = StateShowingReport
}

func (s *Session) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.gen++
	s.selected = nil
	s.result = nil
	s.visible = false
	s.lastErr = err.Error()
	s.state = StateError
}

func (s *Session) selectLocked(doc drive.DocumentNode) {
	s.gen++
	s.selected = &doc
	s.result = nil
	s.visible = false
	s.lastErr = ""
}

func (s *Session) inFlightDocID() string {
	if s.selected == nil {
		return ""
	}
	return strconv.Itoa(s.selected.ID)
}
