package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorportal/internal/domain"
	"mentorportal/internal/httputil"
	"mentorportal/internal/service/workspace"
)

// OperationResponse is returned by every state-changing endpoint: the notice
// to show and the workspace as it stands afterwards.
type OperationResponse struct {
	Notice    httputil.Notice `json:"notice"`
	Workspace *workspace.View `json:"workspace,omitempty"`
}

// WorkspaceHandler serves the per-session folder tree and analysis state.
type WorkspaceHandler struct {
	registry       *workspace.Registry
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(registry *workspace.Registry, maxUploadBytes int64, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		registry:       registry,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// session returns the caller's workspace, answering 400 when the request
// carries no session.
func (h *WorkspaceHandler) session(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	sessionID := httputil.GetSessionID(r)
	if sessionID == "" {
		respondProblem(w, http.StatusBadRequest, "missing session", nil)
		return nil, false
	}
	return h.registry.Get(sessionID), true
}

// loadedSession is session with the tree fetched on first use. A failed load
// is not an error here: the view reports it.
func (h *WorkspaceHandler) loadedSession(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, ok := h.session(w, r)
	if !ok {
		return nil, false
	}
	if err := ws.Tree.EnsureLoaded(r.Context()); err != nil {
		h.logger.Warn("tree load failed", "session_id", ws.ID, "error", err)
	}
	return ws, true
}

// respond finishes an operation: err decides the status, and on success or
// partial success the current workspace view is attached.
func (h *WorkspaceHandler) respond(w http.ResponseWriter, ws *workspace.Workspace, status int, success string, err error) {
	notice := httputil.SuccessNotice(success)
	if err != nil {
		var followUp *domain.FollowUpError
		if !errors.As(err, &followUp) {
			handleError(w, err)
			return
		}
		notice = httputil.WarningNotice(err.Error())
		status = http.StatusOK
	}

	view, viewErr := ws.View()
	if viewErr != nil {
		// The report payload could not be read; the operation still happened
		h.logger.Error("failed to render workspace", "session_id", ws.ID, "error", viewErr)
		notice = httputil.WarningNotice("the analysis report could not be displayed")
	}
	httputil.RespondJSON(w, status, OperationResponse{Notice: notice, Workspace: &view})
}

// GetWorkspace returns the tree view and analysis session of the caller
// GET /api/workspace
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	view, err := ws.View()
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// RefreshTree reloads the folder tree from storage
// POST /api/tree/refresh
func (h *WorkspaceHandler) RefreshTree(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.session(w, r)
	if !ok {
		return
	}

	err := ws.Tree.Refresh(r.Context())
	h.respond(w, ws, http.StatusOK, "Folder tree refreshed", err)
}
