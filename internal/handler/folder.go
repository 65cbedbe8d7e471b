package handler

import (
	"fmt"
	"net/http"

	"mentorportal/internal/domain/models/drive"
	"mentorportal/internal/httputil"
)

// ToggleFolder expands or collapses a folder
// POST /api/folders/{id}/toggle
func (h *WorkspaceHandler) ToggleFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := httputil.PathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	expanded, err := ws.Tree.Toggle(folderID)
	msg := "Folder collapsed"
	if expanded {
		msg = "Folder expanded"
	}
	h.respond(w, ws, http.StatusOK, msg, err)
}

// CreateFolder creates a folder under the root or an existing folder
// POST /api/folders
// Returns 201 with the refreshed workspace
func (h *WorkspaceHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req drive.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	err := ws.Tree.CreateFolder(r.Context(), &req)
	if err != nil {
		h.logger.Debug("create folder rejected", "session_id", ws.ID, "name", req.Name, "error", err)
	}
	h.respond(w, ws, http.StatusCreated, fmt.Sprintf("Folder %q created", req.Name), err)
}

// UploadFile uploads a document into a folder
// POST /api/folders/{id}/files (multipart "file")
func (h *WorkspaceHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	folderID, err := httputil.PathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	upload, err := httputil.ParseFile(w, r, "file", h.maxUploadBytes)
	if err != nil {
		badRequest(w, err)
		return
	}
	defer upload.File.Close()

	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	err = ws.Tree.Upload(r.Context(), folderID, upload.Filename, upload.File)
	h.respond(w, ws, http.StatusCreated, fmt.Sprintf("%s uploaded", upload.Filename), err)
}

// Sync synchronizes storage with the drive, for one folder or everything
// POST /api/sync
func (h *WorkspaceHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req drive.SyncRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.loadedSession(w, r)
	if !ok {
		return
	}

	err := ws.Tree.Sync(r.Context(), req.FolderID)
	h.respond(w, ws, http.StatusOK, "Synchronization finished", err)
}
