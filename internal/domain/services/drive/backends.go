package drive

import (
	"context"
	"io"

	"mentorportal/internal/domain/models/drive"
)

// StorageBackend is the file-storage service that owns folders, documents
// and persisted analyses.
type StorageBackend interface {
	// RootStructure returns the full folder tree (folder_type may be missing).
	RootStructure(ctx context.Context) ([]*drive.FolderNode, error)

	// CreateFolder creates a folder under req.ParentFolderID (nil = root).
	CreateFolder(ctx context.Context, req *drive.CreateFolderRequest) error

	// UploadFile uploads a document into a folder.
	UploadFile(ctx context.Context, folderID int, filename string, content io.Reader) error

	// Sync reconciles records with the drive source. Empty folderID syncs everything.
	Sync(ctx context.Context, folderID string) error

	// GetAnalysis returns the persisted analysis for a drive file.
	// A missing analysis is reported as an error matching domain.ErrNotFound.
	GetAnalysis(ctx context.Context, fileID string) (*drive.AnalysisResult, error)

	// MarkProcessed flags a document as analyzed.
	MarkProcessed(ctx context.Context, documentID int) error
}

// AnalysisBackend is the evaluation service.
type AnalysisBackend interface {
	// AnalyzeUpload analyzes an ad-hoc uploaded document without persisting it.
	AnalyzeUpload(ctx context.Context, filename string, content io.Reader, teamID string) (*drive.AnalysisResult, error)

	// AnalyzeStored analyzes a document already known to the storage backend
	// and persists the result.
	AnalyzeStored(ctx context.Context, fileID, teamID string) (*drive.AnalysisResult, error)
}
