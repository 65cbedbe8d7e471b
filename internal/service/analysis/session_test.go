package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recorder logs which backend endpoints were hit, in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeStorage struct {
	rec        *recorder
	getErr     error
	markErr    error
	getResults map[string]*drive.AnalysisResult

	// context state seen by the follow-up calls
	markCtxErr error
	rootCtxErr error
}

func (f *fakeStorage) RootStructure(ctx context.Context) ([]*drive.FolderNode, error) {
	f.rec.add("storage.root_structure")
	f.rootCtxErr = ctx.Err()
	return nil, nil
}

func (f *fakeStorage) CreateFolder(ctx context.Context, req *drive.CreateFolderRequest) error {
	return nil
}

func (f *fakeStorage) UploadFile(ctx context.Context, folderID int, filename string, content io.Reader) error {
	return nil
}

func (f *fakeStorage) Sync(ctx context.Context, folderID string) error {
	return nil
}

func (f *fakeStorage) GetAnalysis(ctx context.Context, fileID string) (*drive.AnalysisResult, error) {
	f.rec.add("storage.analyze-document/" + fileID)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if res, ok := f.getResults[fileID]; ok {
		return res, nil
	}
	return &drive.AnalysisResult{TeamID: "stored"}, nil
}

func (f *fakeStorage) MarkProcessed(ctx context.Context, documentID int) error {
	f.rec.add("storage.mark_processed")
	f.markCtxErr = ctx.Err()
	return f.markErr
}

type fakeAnalysis struct {
	rec      *recorder
	err      error
	lastTeam string

	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAnalysis) AnalyzeUpload(ctx context.Context, filename string, content io.Reader, teamID string) (*drive.AnalysisResult, error) {
	f.rec.add("analysis.analyze-document")
	f.lastTeam = teamID
	if f.err != nil {
		return nil, f.err
	}
	return &drive.AnalysisResult{TeamID: teamID, Status: "completed"}, nil
}

func (f *fakeAnalysis) AnalyzeStored(ctx context.Context, fileID, teamID string) (*drive.AnalysisResult, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.rec.add("analysis.save/analyze-document")
	f.lastTeam = teamID
	if f.err != nil {
		return nil, f.err
	}
	return &drive.AnalysisResult{TeamID: teamID, InterviewContent: fileID}, nil
}

func newTestSession() (*Session, *fakeStorage, *fakeAnalysis, *recorder) {
	rec := &recorder{}
	storage := &fakeStorage{rec: rec}
	backend := &fakeAnalysis{rec: rec}
	refresh := func(ctx context.Context) error {
		_, err := storage.RootStructure(ctx)
		return err
	}
	return NewSession(storage, backend, refresh, testLogger()), storage, backend, rec
}

var (
	unprocessed = drive.DocumentNode{ID: 1, Name: "nuevo.docx", FileID: "f1"}
	processed   = drive.DocumentNode{ID: 2, Name: "viejo.docx", FileID: "f2", Processed: true}
)

func equalCalls(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSession_OpenUnprocessedAnalyzes(t *testing.T) {
	s, _, backend, rec := newTestSession()

	if err := s.Open(context.Background(), unprocessed, "team-1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []string{"analysis.save/analyze-document", "storage.mark_processed", "storage.root_structure"}
	if got := rec.list(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if backend.lastTeam != "team-1" {
		t.Errorf("team = %q", backend.lastTeam)
	}

	snap := s.Snapshot()
	if snap.State != StateShowingReport || !snap.ReportVisible {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.Selected == nil || snap.Selected.ID != unprocessed.ID || snap.Result.InterviewContent != "f1" {
		t.Errorf("result does not belong to the selection: %+v", snap)
	}
}

func TestSession_OpenProcessedViews(t *testing.T) {
	s, _, _, rec := newTestSession()

	if err := s.Open(context.Background(), processed, "team-1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []string{"storage.analyze-document/f2"}
	if got := rec.list(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if snap := s.Snapshot(); snap.State != StateShowingReport || snap.Result.TeamID != "stored" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestSession_ViewToggleMakesNoRequest(t *testing.T) {
	s, _, _, rec := newTestSession()
	ctx := context.Background()

	if err := s.ViewAnalysis(ctx, processed); err != nil {
		t.Fatal(err)
	}
	calls := len(rec.list())

	if err := s.ViewAnalysis(ctx, processed); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().ReportVisible {
		t.Error("second view should hide the report")
	}
	if err := s.ViewAnalysis(ctx, processed); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().ReportVisible {
		t.Error("third view should show the report again")
	}
	if got := len(rec.list()); got != calls {
		t.Errorf("toggle issued %d extra requests", got-calls)
	}
}

func TestSession_ViewFailureClearsSelection(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing analysis", &domain.UpstreamError{Backend: "storage", Operation: "get_analysis", Status: 404}},
		{"server error", &domain.UpstreamError{Backend: "storage", Operation: "get_analysis", Status: 500}},
		{"transport", domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, storage, _, _ := newTestSession()
			storage.getErr = tt.err

			err := s.ViewAnalysis(context.Background(), processed)
			if !errors.Is(err, domain.ErrUpstream) {
				t.Fatalf("ViewAnalysis() error = %v", err)
			}

			snap := s.Snapshot()
			if snap.State != StateError || snap.Selected != nil || snap.Result != nil || snap.ReportVisible {
				t.Errorf("unexpected snapshot: %+v", snap)
			}
			if snap.Error == "" {
				t.Error("failure message should be kept")
			}
		})
	}
}

func TestSession_AnalyzeFailure(t *testing.T) {
	s, _, backend, rec := newTestSession()
	backend.err = &domain.UpstreamError{Backend: "analysis", Operation: "save_analyze_document", Status: 500}

	err := s.Analyze(context.Background(), unprocessed, "t")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("Analyze() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateError || snap.Selected != nil || snap.Result != nil {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	// No follow-up after a failed analysis
	if got := rec.list(); !equalCalls(got, []string{"analysis.save/analyze-document"}) {
		t.Errorf("calls = %v", got)
	}
}

func TestSession_AnalyzeFollowUpFailureKeepsReport(t *testing.T) {
	s, storage, _, rec := newTestSession()
	storage.markErr = errors.New("patch failed")

	err := s.Analyze(context.Background(), unprocessed, "t")

	var followUp *domain.FollowUpError
	if !errors.As(err, &followUp) {
		t.Fatalf("Analyze() error = %v, want *domain.FollowUpError", err)
	}
	if snap := s.Snapshot(); snap.State != StateShowingReport || snap.Result == nil {
		t.Errorf("report should survive follow-up failure: %+v", snap)
	}
	// Refresh still runs after a failed mark
	want := []string{"analysis.save/analyze-document", "storage.mark_processed", "storage.root_structure"}
	if got := rec.list(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestSession_AnalyzeFollowUpsOutliveCaller(t *testing.T) {
	s, storage, backend, rec := newTestSession()
	backend.block = make(chan struct{})
	backend.entered = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Analyze(ctx, unprocessed, "t") }()

	<-backend.entered
	cancel() // the browser went away mid-analysis
	close(backend.block)

	if err := <-done; err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	want := []string{"analysis.save/analyze-document", "storage.mark_processed", "storage.root_structure"}
	if got := rec.list(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if storage.markCtxErr != nil || storage.rootCtxErr != nil {
		t.Errorf("follow-ups ran on a canceled context: mark=%v refresh=%v", storage.markCtxErr, storage.rootCtxErr)
	}
}

func TestSession_AnalyzeValidation(t *testing.T) {
	s, _, _, rec := newTestSession()

	err := s.Analyze(context.Background(), unprocessed, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Analyze() error = %v, want ErrValidation", err)
	}
	if len(rec.list()) != 0 {
		t.Error("validation failure must not reach a backend")
	}
	if s.Snapshot().State != StateIdle {
		t.Error("state should not change on validation failure")
	}
}

func TestSession_ClearDropsResult(t *testing.T) {
	s, _, _, _ := newTestSession()

	if err := s.ViewAnalysis(context.Background(), processed); err != nil {
		t.Fatal(err)
	}
	s.Clear()

	snap := s.Snapshot()
	if snap.State != StateIdle || snap.Selected != nil || snap.Result != nil || snap.ReportVisible {
		t.Errorf("unexpected snapshot after Clear: %+v", snap)
	}
}

func TestSession_SelectDropsResult(t *testing.T) {
	s, _, _, _ := newTestSession()

	if err := s.ViewAnalysis(context.Background(), processed); err != nil {
		t.Fatal(err)
	}
	s.Select(unprocessed)

	snap := s.Snapshot()
	if snap.State != StateSelectedUnanalyzed || snap.Result != nil || snap.ReportVisible {
		t.Errorf("unexpected snapshot after Select: %+v", snap)
	}
	if !s.IsSelected(unprocessed.ID) || s.IsSelected(processed.ID) {
		t.Error("selection not moved")
	}
}

func TestSession_ConcurrentActionsConflict(t *testing.T) {
	s, _, backend, _ := newTestSession()
	backend.block = make(chan struct{})
	backend.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- s.Analyze(context.Background(), unprocessed, "t") }()
	<-backend.entered

	if got := s.Snapshot().State; got != StateAnalyzing || !got.Busy() {
		t.Errorf("state = %q, want analyzing", got)
	}

	err := s.ViewAnalysis(context.Background(), processed)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("ViewAnalysis() during analysis error = %v, want ErrConflict", err)
	}

	close(backend.block)
	if err := <-done; err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
}

func TestSession_StaleResponseDropped(t *testing.T) {
	s, _, backend, _ := newTestSession()
	backend.block = make(chan struct{})
	backend.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- s.Analyze(context.Background(), unprocessed, "t") }()
	<-backend.entered

	// The user moves on before the analysis returns
	s.Select(processed)
	close(backend.block)
	if err := <-done; err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != processed.ID {
		t.Fatalf("selection = %+v", snap.Selected)
	}
	if snap.Result != nil {
		t.Error("result of the previous document must not be held")
	}
}

func TestUploadAnalyzer(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		team     string
		wantTeam string
		wantErr  error
	}{
		{name: "docx with default team", filename: "entrevista.docx", wantTeam: "default-team"},
		{name: "upper-case extension", filename: "ENTREVISTA.DOCX", team: "t9", wantTeam: "t9"},
		{name: "pdf rejected", filename: "entrevista.pdf", wantErr: domain.ErrValidation},
		{name: "no extension", filename: "docx", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			backend := &fakeAnalysis{rec: rec}
			a := NewUploadAnalyzer(backend, "default-team", testLogger())

			result, err := a.AnalyzeUpload(context.Background(), tt.filename, strings.NewReader("x"), tt.team)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(rec.list()) != 0 {
					t.Error("rejected file must not reach the backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("AnalyzeUpload() error = %v", err)
			}
			if backend.lastTeam != tt.wantTeam || result.Status != "completed" {
				t.Errorf("team = %q, result = %+v", backend.lastTeam, result)
			}
		})
	}
}
