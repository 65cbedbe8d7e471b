// Package workspace ties one browser session's state together: its folder
// tree controller, folder rule store and analysis session.
package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
	driveSvc "mentorportal/internal/domain/services/drive"
	"mentorportal/internal/folderrules"
	"mentorportal/internal/service/analysis"
	driveService "mentorportal/internal/service/drive"
	"mentorportal/internal/service/report"
)

// Deps are the process-wide collaborators shared by every workspace.
type Deps struct {
	Storage       driveSvc.StorageBackend
	Analysis      driveSvc.AnalysisBackend
	Rules         *folderrules.Rules
	DefaultTeamID string
	Logger        *slog.Logger
}

// Workspace is the server-side state of one session.
type Workspace struct {
	ID       string
	Tree     *driveService.Controller
	Analysis *analysis.Session

	defaultTeamID string
}

// New creates a workspace with an unloaded tree and an idle analysis session.
func New(id string, deps Deps) *Workspace {
	logger := deps.Logger.With("session_id", id)
	tree := driveService.NewController(deps.Storage, folderrules.NewStore(deps.Rules), logger)

	return &Workspace{
		ID:            id,
		Tree:          tree,
		Analysis:      analysis.NewSession(deps.Storage, deps.Analysis, tree.Refresh, logger),
		defaultTeamID: deps.DefaultTeamID,
	}
}

// Document looks a document up in the held tree.
func (w *Workspace) Document(docID int) (drive.DocumentNode, error) {
	doc, ok := w.Tree.Index().Document(docID)
	if !ok {
		return drive.DocumentNode{}, fmt.Errorf("document %d: %w", docID, domain.ErrNotFound)
	}
	return *doc, nil
}

// TeamIDFor returns the team a document's analysis is filed under: the
// nearest folder above it with a team id, else the configured default.
func (w *Workspace) TeamIDFor(docID int) string {
	if team, ok := w.Tree.Index().TeamIDFor(docID); ok {
		return team
	}
	return w.defaultTeamID
}

// SelectDocument selects a document from the held tree.
func (w *Workspace) SelectDocument(docID int) error {
	doc, err := w.Document(docID)
	if err != nil {
		return err
	}
	w.Analysis.Select(doc)
	return nil
}

// AnalyzeDocument creates a new analysis of a document from the held tree.
func (w *Workspace) AnalyzeDocument(ctx context.Context, docID int) error {
	doc, err := w.Document(docID)
	if err != nil {
		return err
	}
	return w.Analysis.Analyze(ctx, doc, w.TeamIDFor(docID))
}

// ViewDocument shows, or toggles, the stored analysis of a document.
func (w *Workspace) ViewDocument(ctx context.Context, docID int) error {
	doc, err := w.Document(docID)
	if err != nil {
		return err
	}
	return w.Analysis.ViewAnalysis(ctx, doc)
}

// OpenDocument runs the card action of a document.
func (w *Workspace) OpenDocument(ctx context.Context, docID int) error {
	doc, err := w.Document(docID)
	if err != nil {
		return err
	}
	return w.Analysis.Open(ctx, doc, w.TeamIDFor(docID))
}

// View is everything the UI renders for a session.
type View struct {
	Tree     driveService.TreeView `json:"tree"`
	Analysis analysis.Snapshot     `json:"analysis"`
	Report   *report.Report        `json:"report,omitempty"`
}

// View renders the tree with document cards marked from the analysis state.
// The report is included only while it is visible.
func (w *Workspace) View() (View, error) {
	snap := w.Analysis.Snapshot()

	tree := w.Tree.View(func(card *driveService.DocumentView) {
		if snap.Selected == nil || snap.Selected.ID != card.ID {
			return
		}
		card.IsSelected = true
		card.IsBusy = snap.State.Busy()
	})

	view := View{Tree: tree, Analysis: snap}
	if snap.ReportVisible && snap.Result != nil {
		r, err := report.Build(snap.Result)
		if err != nil {
			return view, err
		}
		view.Report = r
	}
	return view, nil
}

// Report returns the visible report, or domain.ErrNotFound.
func (w *Workspace) Report() (*report.Report, error) {
	snap := w.Analysis.Snapshot()
	if !snap.ReportVisible || snap.Result == nil {
		return nil, fmt.Errorf("no analysis is shown: %w", domain.ErrNotFound)
	}
	return report.Build(snap.Result)
}
