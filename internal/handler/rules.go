package handler

import (
	"net/http"

	"mentorportal/internal/folderrules"
	"mentorportal/internal/httputil"
)

// RulesResponse lists the folder hierarchy and the session's current level.
type RulesResponse struct {
	CurrentLevel folderrules.Level  `json:"current_level"`
	Current      folderrules.Rule   `json:"current"`
	Rules        []folderrules.Rule `json:"rules"`
}

// SetLevelRequest selects the level new folders are created under.
type SetLevelRequest struct {
	Level string `json:"level"`
}

func rulesResponse(store *folderrules.Store) RulesResponse {
	return RulesResponse{
		CurrentLevel: store.CurrentLevel(),
		Current:      store.GetCurrentRules(),
		Rules:        store.Rules().All(),
	}
}

// GetRules returns the folder type rules
// GET /api/rules
func (h *WorkspaceHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, rulesResponse(ws.Tree.Store()))
}

// SetLevel changes the session's current level
// PUT /api/rules/level
func (h *WorkspaceHandler) SetLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLevelRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	ws, ok := h.session(w, r)
	if !ok {
		return
	}

	store := ws.Tree.Store()
	if err := store.SetCurrentLevel(folderrules.Level(req.Level)); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, rulesResponse(store))
}
