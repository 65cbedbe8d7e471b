// Package drive holds the folder tree model and the controller that mediates
// every tree interaction (expand, create, upload, sync) for one session.
package drive

import (
	"strings"

	"mentorportal/internal/domain/models/drive"
	"mentorportal/internal/folderrules"
)

// BuildTree resolves missing folder types and returns a new tree.
// raw is not modified. parent is the level raw sits under (folderrules.Root
// for the backend's top-level list).
func BuildTree(raw []*drive.FolderNode, parent folderrules.Level) []*drive.FolderNode {
	out := make([]*drive.FolderNode, 0, len(raw))
	for _, node := range raw {
		if node == nil {
			continue
		}

		folderType := node.FolderType
		if folderType == "" {
			folderType = InferType(node.Name, parent)
		}

		built := &drive.FolderNode{
			ID:                  node.ID,
			Name:                node.Name,
			FolderType:          folderType,
			GoogleDriveFolderID: node.GoogleDriveFolderID,
			TeamID:              node.TeamID,
			Children:            BuildTree(node.Children, folderrules.LevelOf(folderType)),
			Documents:           append([]drive.DocumentNode{}, node.Documents...),
		}
		if node.ParentID != nil {
			parentID := *node.ParentID
			built.ParentID = &parentID
		}
		out = append(out, built)
	}
	return out
}

// InferType guesses a folder's type from its name and the level it sits under.
func InferType(name string, parent folderrules.Level) drive.FolderType {
	switch parent {
	case folderrules.Root:
		return drive.FolderTypeProject
	case folderrules.LevelOf(drive.FolderTypeProject):
		if strings.Contains(strings.ToLower(name), "avance") {
			return drive.FolderTypeAvances
		}
		return drive.FolderTypeSesiones
	case folderrules.LevelOf(drive.FolderTypeAvances):
		return drive.FolderTypeEquipo
	case folderrules.LevelOf(drive.FolderTypeSesiones):
		return drive.FolderTypeTema
	default:
		return drive.FolderTypeProject
	}
}

// FolderEntry is a folder in the Index arena.
type FolderEntry struct {
	Node      *drive.FolderNode
	ParentID  int // 0 for top-level folders
	HasParent bool
	Depth     int
}

// Index gives id-based access to a built tree. Nodes are shared with the
// tree; an Index is rebuilt whenever the tree is replaced.
type Index struct {
	roots     []*drive.FolderNode
	folders   map[int]*FolderEntry
	documents map[int]*drive.DocumentNode
	docFolder map[int]int
}

// NewIndex indexes tree. Duplicate ids keep the first occurrence.
func NewIndex(tree []*drive.FolderNode) *Index {
	idx := &Index{
		roots:     tree,
		folders:   make(map[int]*FolderEntry),
		documents: make(map[int]*drive.DocumentNode),
		docFolder: make(map[int]int),
	}

	var add func(nodes []*drive.FolderNode, parent *drive.FolderNode, depth int)
	add = func(nodes []*drive.FolderNode, parent *drive.FolderNode, depth int) {
		for _, node := range nodes {
			if _, dup := idx.folders[node.ID]; dup {
				continue
			}
			entry := &FolderEntry{Node: node, Depth: depth}
			if parent != nil {
				entry.ParentID = parent.ID
				entry.HasParent = true
			}
			idx.folders[node.ID] = entry

			for i := range node.Documents {
				doc := &node.Documents[i]
				if _, dup := idx.documents[doc.ID]; dup {
					continue
				}
				idx.documents[doc.ID] = doc
				idx.docFolder[doc.ID] = node.ID
			}
			add(node.Children, node, depth+1)
		}
	}
	add(tree, nil, 0)

	return idx
}

// Roots returns the top-level folders.
func (idx *Index) Roots() []*drive.FolderNode {
	return idx.roots
}

// Len returns the number of folders.
func (idx *Index) Len() int {
	return len(idx.folders)
}

// Folder looks up a folder by id.
func (idx *Index) Folder(id int) (*drive.FolderNode, bool) {
	entry, ok := idx.folders[id]
	if !ok {
		return nil, false
	}
	return entry.Node, true
}

// Document looks up a document by id.
func (idx *Index) Document(id int) (*drive.DocumentNode, bool) {
	doc, ok := idx.documents[id]
	return doc, ok
}

// FolderOfDocument returns the folder that owns a document.
func (idx *Index) FolderOfDocument(docID int) (*drive.FolderNode, bool) {
	folderID, ok := idx.docFolder[docID]
	if !ok {
		return nil, false
	}
	return idx.Folder(folderID)
}

// Ancestors returns the chain from the folder itself up to its top-level
// project, nearest first. Empty for unknown ids.
func (idx *Index) Ancestors(folderID int) []*drive.FolderNode {
	var chain []*drive.FolderNode
	entry, ok := idx.folders[folderID]
	for ok {
		chain = append(chain, entry.Node)
		if !entry.HasParent {
			break
		}
		entry, ok = idx.folders[entry.ParentID]
	}
	return chain
}

// TeamIDFor returns the team id of the nearest folder above a document that
// carries one.
func (idx *Index) TeamIDFor(docID int) (string, bool) {
	folderID, ok := idx.docFolder[docID]
	if !ok {
		return "", false
	}
	for _, folder := range idx.Ancestors(folderID) {
		if folder.TeamID != "" {
			return folder.TeamID, true
		}
	}
	return "", false
}

// LevelOf returns the level a folder creates children under; Root for unknown ids.
func (idx *Index) LevelOf(folderID *int) folderrules.Level {
	if folderID == nil {
		return folderrules.Root
	}
	node, ok := idx.Folder(*folderID)
	if !ok {
		return folderrules.Root
	}
	return folderrules.LevelOf(node.FolderType)
}

// Walk visits folders in pre-order. Returning false skips the folder's children.
func (idx *Index) Walk(fn func(node *drive.FolderNode, depth int) bool) {
	var walk func(nodes []*drive.FolderNode, depth int)
	walk = func(nodes []*drive.FolderNode, depth int) {
		for _, node := range nodes {
			if fn(node, depth) {
				walk(node.Children, depth+1)
			}
		}
	}
	walk(idx.roots, 0)
}
