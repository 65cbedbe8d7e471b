package handler

import (
	"net/http"

	"mentorportal/internal/httputil"
)

// SelectDocument selects a document card
// POST /api/documents/{id}/select
func (h *WorkspaceHandler) SelectDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := httputil.PathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	h.respond(w, ws, http.StatusOK, "Document selected", ws.SelectDocument(docID))
}

// AnalyzeDocument creates a new analysis of a stored document
// POST /api/documents/{id}/analyze
func (h *WorkspaceHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := httputil.PathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	err = ws.AnalyzeDocument(r.Context(), docID)
	if err != nil {
		h.logger.Warn("document analysis failed", "session_id", ws.ID, "document_id", docID, "error", err)
	}
	h.respond(w, ws, http.StatusOK, "Analysis completed", err)
}

// ViewAnalysis shows the stored analysis of a document, or hides it when it
// is already shown
// POST /api/documents/{id}/analysis
func (h *WorkspaceHandler) ViewAnalysis(w http.ResponseWriter, r *http.Request) {
	docID, err := httputil.PathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	h.respond(w, ws, http.StatusOK, "Analysis loaded", ws.ViewDocument(r.Context(), docID))
}

// OpenDocument runs a card's action: view when processed, analyze otherwise
// POST /api/documents/{id}/open
func (h *WorkspaceHandler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := httputil.PathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	h.respond(w, ws, http.StatusOK, "Analysis ready", ws.OpenDocument(r.Context(), docID))
}

// ClearSelection deselects the current document and hides its report
// DELETE /api/selection
func (h *WorkspaceHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.session(w, r)
	if !ok {
		return
	}

	ws.Analysis.Clear()
	h.respond(w, ws, http.StatusOK, "Selection cleared", nil)
}

// GetAnalysis returns the report currently shown
// GET /api/analysis
func (h *WorkspaceHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.session(w, r)
	if !ok {
		return
	}

	report, err := ws.Report()
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, report)
}
