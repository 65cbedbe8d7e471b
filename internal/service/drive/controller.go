package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
	driveSvc "mentorportal/internal/domain/services/drive"
	"mentorportal/internal/folderrules"
	"mentorportal/internal/metrics"
)

// Controller owns one session's view of the folder tree and every action
// taken on it. The mutex guards local state only and is never held across a
// backend call.
type Controller struct {
	storage driveSvc.StorageBackend
	store   *folderrules.Store
	logger  *slog.Logger

	mu       sync.Mutex
	index    *Index
	loaded   bool
	loadErr  error
	// refreshSeq numbers refreshes in start order; appliedSeq is the newest
	// one whose result is held. Older results never replace newer ones.
	refreshSeq uint64
	appliedSeq uint64
	expanded map[int]bool
	flags    map[string]bool
	// syncing is set while a sync runs; syncFolder is its drive folder id
	// ("" = everything)
	syncing    bool
	syncFolder string
}

// NewController creates a controller with an empty tree.
func NewController(storage driveSvc.StorageBackend, store *folderrules.Store, logger *slog.Logger) *Controller {
	return &Controller{
		storage:  storage,
		store:    store,
		logger:   logger.With("component", "tree_controller"),
		index:    NewIndex(nil),
		expanded: make(map[int]bool),
		flags:    make(map[string]bool),
	}
}

func uploadFlag(folderID int) string {
	return "upload-" + strconv.Itoa(folderID)
}

// Store returns the folder rule store the controller validates against.
func (c *Controller) Store() *folderrules.Store {
	return c.store
}

// Index returns the index of the tree currently held.
func (c *Controller) Index() *Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Refresh refetches the whole tree and replaces the held one. On failure the
// held tree becomes empty, stays marked unloaded so the next EnsureLoaded
// retries, and the error is returned. A result is dropped when a refresh that
// started later has already been applied.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	raw, err := c.storage.RootStructure(ctx)
	if err != nil {
		c.mu.Lock()
		if seq < c.appliedSeq {
			c.mu.Unlock()
			c.logger.Debug("stale tree fetch failed, newer tree held", "seq", seq, "error", err)
			return nil
		}
		c.appliedSeq = seq
		c.index = NewIndex(nil)
		c.loaded = false
		c.loadErr = err
		c.mu.Unlock()

		metrics.SetTreeFolders(0)
		c.logger.Error("failed to fetch folder tree", "error", err)
		return fmt.Errorf("failed to load folder tree: %w", err)
	}

	idx := NewIndex(BuildTree(raw, folderrules.Root))

	c.mu.Lock()
	if seq < c.appliedSeq {
		c.mu.Unlock()
		c.logger.Debug("stale tree fetch dropped", "seq", seq)
		return nil
	}
	c.appliedSeq = seq
	c.index = idx
	c.loaded = true
	c.loadErr = nil
	c.mu.Unlock()

	metrics.SetTreeFolders(idx.Len())
	c.logger.Info("folder tree built",
		"root_count", len(idx.Roots()),
		"folder_count", idx.Len(),
	)
	return nil
}

// EnsureLoaded fetches the tree on first use.
func (c *Controller) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}

// Toggle flips a folder's expansion and returns the new state.
func (c *Controller) Toggle(folderID int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index.Folder(folderID); !ok {
		return false, fmt.Errorf("folder %d: %w", folderID, domain.ErrNotFound)
	}
	if c.expanded[folderID] {
		delete(c.expanded, folderID)
		return false, nil
	}
	c.expanded[folderID] = true
	return true, nil
}

// IsExpanded reports whether a folder's children are shown.
func (c *Controller) IsExpanded(folderID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded[folderID]
}

// ExpandedIDs returns the expanded folder ids in ascending order.
func (c *Controller) ExpandedIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.expanded))
	for id := range c.expanded {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CreateFolder validates req against the hierarchy and the held tree, then
// creates the folder and refetches the tree. Validation failures never reach
// the backend. req is normalized in place (trimmed name, defaulted type,
// dropped team id).
func (c *Controller) CreateFolder(ctx context.Context, req *drive.CreateFolderRequest) error {
	idx := c.Index()
	parentLevel, err := c.normalizeCreate(req, idx)
	if err != nil {
		return err
	}
	if err := c.validateCreate(req, parentLevel); err != nil {
		return err
	}
	// The rule store follows the level the user is creating under
	if err := c.store.SetCurrentLevel(parentLevel); err != nil {
		c.logger.Warn("failed to follow parent level", "level", parentLevel, "error", err)
	}

	if err := c.storage.CreateFolder(ctx, req); err != nil {
		c.logger.Error("failed to create folder", "name", req.Name, "folder_type", req.FolderType, "error", err)
		return fmt.Errorf("failed to create folder: %w", err)
	}

	c.logger.Info("folder created",
		"name", req.Name,
		"folder_type", req.FolderType,
		"parent_folder_id", req.ParentFolderID,
	)

	if err := c.Refresh(ctx); err != nil {
		return &domain.FollowUpError{Operation: "create folder", Step: "refresh", Err: err}
	}
	return nil
}

// Upload sends a file into a folder. Only one upload per folder may run at a
// time; a second one fails with domain.ErrConflict.
func (c *Controller) Upload(ctx context.Context, folderID int, filename string, content io.Reader) error {
	if err := validateUpload(filename, content); err != nil {
		return err
	}

	flag := uploadFlag(folderID)
	c.mu.Lock()
	if _, ok := c.index.Folder(folderID); !ok {
		c.mu.Unlock()
		return fmt.Errorf("folder %d: %w", folderID, domain.ErrNotFound)
	}
	if c.flags[flag] {
		c.mu.Unlock()
		return &domain.ConflictError{
			Message:      "an upload to this folder is already in progress",
			ResourceType: "folder",
			ResourceID:   strconv.Itoa(folderID),
		}
	}
	c.flags[flag] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.flags, flag)
		c.mu.Unlock()
	}()

	if err := c.storage.UploadFile(ctx, folderID, filename, content); err != nil {
		c.logger.Error("failed to upload file", "folder_id", folderID, "filename", filename, "error", err)
		return fmt.Errorf("failed to upload file: %w", err)
	}

	c.logger.Info("file uploaded", "folder_id", folderID, "filename", filename)

	if err := c.Refresh(ctx); err != nil {
		return &domain.FollowUpError{Operation: "upload", Step: "refresh", Err: err}
	}
	return nil
}

// Sync reconciles the backend with the drive source. Empty driveFolderID syncs
// everything. At most one sync runs per controller.
func (c *Controller) Sync(ctx context.Context, driveFolderID string) error {
	if err := validateSync(driveFolderID); err != nil {
		return err
	}

	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return &domain.ConflictError{
			Message:      "a sync is already in progress",
			ResourceType: "sync",
			ResourceID:   c.syncFolder,
		}
	}
	c.syncing = true
	c.syncFolder = driveFolderID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.syncing = false
		c.syncFolder = ""
		c.mu.Unlock()
	}()

	if err := c.storage.Sync(ctx, driveFolderID); err != nil {
		c.logger.Error("failed to sync", "drive_folder_id", driveFolderID, "error", err)
		return fmt.Errorf("failed to sync: %w", err)
	}

	c.logger.Info("sync completed", "drive_folder_id", driveFolderID)

	if err := c.Refresh(ctx); err != nil {
		return &domain.FollowUpError{Operation: "sync", Step: "refresh", Err: err}
	}
	return nil
}

// Flags returns the in-flight operation keys, sorted.
func (c *Controller) Flags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.flags)+1)
	for key := range c.flags {
		keys = append(keys, key)
	}
	if c.syncing {
		keys = append(keys, "sync")
	}
	sort.Strings(keys)
	return keys
}

// IsUploading reports whether an upload into folderID is in flight.
func (c *Controller) IsUploading(folderID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags[uploadFlag(folderID)]
}

// SyncingFolder returns the drive folder id being synced and whether a sync runs.
func (c *Controller) SyncingFolder() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncFolder, c.syncing
}

// allowedUnder returns the types creatable under level. Levels missing from
// the table (unexpected backend types) allow nothing.
func (c *Controller) allowedUnder(level folderrules.Level) []drive.FolderType {
	rules := c.store.Rules()
	if !rules.Has(level) {
		return []drive.FolderType{}
	}
	return rules.ChildTypesOf(level)
}
