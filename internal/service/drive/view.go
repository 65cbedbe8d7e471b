package drive

import (
	"mentorportal/internal/domain/models/drive"
	"mentorportal/internal/folderrules"
)

// TreeView is the rendered folder tree for one session.
type TreeView struct {
	Folders       []FolderView      `json:"folders"`
	CurrentLevel  folderrules.Level `json:"current_level"`
	Syncing       bool              `json:"syncing"`
	SyncingFolder string            `json:"syncing_folder,omitempty"`
	Flags         []string          `json:"flags"`
	LoadError     string            `json:"load_error,omitempty"`
}

// FolderView is a folder header plus, when expanded, its contents.
type FolderView struct {
	ID                  int                `json:"id"`
	Name                string             `json:"name"`
	FolderType          drive.FolderType   `json:"folder_type"`
	TypeLabel           string             `json:"type_label"`
	GoogleDriveFolderID string             `json:"google_drive_folder_id"`
	TeamID              string             `json:"team_id,omitempty"`
	Depth               int                `json:"depth"`
	IsExpanded          bool               `json:"is_expanded"`
	IsUploading         bool               `json:"is_uploading"`
	IsSyncing           bool               `json:"is_syncing"`
	AllowedChildTypes   []drive.FolderType `json:"allowed_child_types"`
	CanCreateSubfolder  bool               `json:"can_create_subfolder"`
	DocumentCount       int                `json:"document_count"`
	Children            []FolderView       `json:"children,omitempty"`
	Documents           []DocumentView     `json:"documents,omitempty"`
}

// DocumentView is a document card. Selection and analysis fields are filled
// in by the caller from the session's analysis state.
type DocumentView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	FileID      string `json:"file_id"`
	WebViewLink string `json:"web_view_link,omitempty"`
	Processed   bool   `json:"processed"`
	IsSelected  bool   `json:"is_selected"`
	IsBusy      bool   `json:"is_busy"`
	Action      string `json:"action"` // "view" or "analyze"
}

// View renders the held tree. mark, when non-nil, decorates every listed
// document card.
func (c *Controller) View(mark func(*DocumentView)) TreeView {
	c.mu.Lock()
	idx := c.index
	expanded := make(map[int]bool, len(c.expanded))
	for id := range c.expanded {
		expanded[id] = true
	}
	flags := make(map[string]bool, len(c.flags))
	for key := range c.flags {
		flags[key] = true
	}
	syncing, syncFolder := c.syncing, c.syncFolder
	var loadErr string
	if c.loadErr != nil {
		loadErr = c.loadErr.Error()
	}
	c.mu.Unlock()

	rules := c.store.Rules()
	var render func(nodes []*drive.FolderNode, depth int) []FolderView
	render = func(nodes []*drive.FolderNode, depth int) []FolderView {
		views := make([]FolderView, 0, len(nodes))
		for _, node := range nodes {
			allowed := c.allowedUnder(folderrules.LevelOf(node.FolderType))
			v := FolderView{
				ID:                  node.ID,
				Name:                node.Name,
				FolderType:          node.FolderType,
				TypeLabel:           rules.Label(node.FolderType),
				GoogleDriveFolderID: node.GoogleDriveFolderID,
				TeamID:              node.TeamID,
				Depth:               depth,
				IsExpanded:          expanded[node.ID],
				IsUploading:         flags[uploadFlag(node.ID)],
				IsSyncing:           syncing && (syncFolder == "" || syncFolder == node.GoogleDriveFolderID),
				AllowedChildTypes:   allowed,
				CanCreateSubfolder:  len(allowed) > 0,
				DocumentCount:       len(node.Documents),
			}
			if v.IsExpanded {
				v.Children = render(node.Children, depth+1)
				v.Documents = make([]DocumentView, 0, len(node.Documents))
				for _, doc := range node.Documents {
					dv := NewDocumentView(doc)
					if mark != nil {
						mark(&dv)
					}
					v.Documents = append(v.Documents, dv)
				}
			}
			views = append(views, v)
		}
		return views
	}

	view := TreeView{
		Folders:      render(idx.Roots(), 0),
		CurrentLevel: c.store.CurrentLevel(),
		Syncing:      syncing,
		Flags:        c.Flags(),
		LoadError:    loadErr,
	}
	if syncing {
		view.SyncingFolder = syncFolder
	}
	return view
}

// NewDocumentView builds an unselected card for doc.
func NewDocumentView(doc drive.DocumentNode) DocumentView {
	action := "analyze"
	if doc.Processed {
		action = "view"
	}
	return DocumentView{
		ID:          doc.ID,
		Name:        doc.Name,
		MimeType:    doc.MimeType,
		FileID:      doc.FileID,
		WebViewLink: doc.WebViewLink,
		Processed:   doc.Processed,
		Action:      action,
	}
}
