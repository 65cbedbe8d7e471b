package drive

// FolderType classifies a folder's role in the fixed repository hierarchy.
type FolderType string

const (
	FolderTypeProject  FolderType = "project"
	FolderTypeAvances  FolderType = "avances"
	FolderTypeSesiones FolderType = "sesiones"
	FolderTypeEquipo   FolderType = "equipo"
	FolderTypeTema     FolderType = "tema"
)

// FolderNode is a folder in the tree returned by GET /drive/root_structure.
// FolderType may be empty in backend responses; it is filled in by tree construction.
type FolderNode struct {
	ID                  int            `json:"id"`
	Name                string         `json:"name"`
	FolderType          FolderType     `json:"folder_type,omitempty"`
	GoogleDriveFolderID string         `json:"google_drive_folder_id"`
	ParentID            *int           `json:"parent_id"` // NULL = root level
	TeamID              string         `json:"team_id,omitempty"`
	Children            []*FolderNode  `json:"children"`
	Documents           []DocumentNode `json:"documents"`
}

// DocumentNode is a document owned by a folder.
type DocumentNode struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	FileID      string `json:"file_id"`
	WebViewLink string `json:"web_view_link,omitempty"`
	Processed   bool   `json:"processed"`
}

// CreateFolderRequest is the folder creation form submitted by the UI.
type CreateFolderRequest struct {
	Name           string     `json:"name"`
	FolderType     FolderType `json:"folder_type,omitempty"`
	ParentFolderID *int       `json:"parent_folder_id,omitempty"` // nil = root
	TeamID         string     `json:"team_id,omitempty"`
}

// SyncRequest triggers a drive synchronization. Empty FolderID syncs everything.
type SyncRequest struct {
	FolderID string `json:"folder_id,omitempty"`
}
