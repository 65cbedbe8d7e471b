package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupMockStorage(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_RootStructure(t *testing.T) {
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/drive/root_structure" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "name": "Proyecto X", "google_drive_folder_id": "g1", "parent_id": null,
			 "children": [{"id": 2, "name": "Avances", "google_drive_folder_id": "g2", "parent_id": 1,
			               "children": [], "documents": [{"id": 7, "name": "a.docx", "mime_type": "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "file_id": "f7", "processed": true}]}],
			 "documents": []}
		]`))
	})

	client := NewClient(server.URL+"/", testLogger())
	folders, err := client.RootStructure(context.Background())
	if err != nil {
		t.Fatalf("RootStructure() error = %v", err)
	}

	if len(folders) != 1 {
		t.Fatalf("expected 1 root folder, got %d", len(folders))
	}
	root := folders[0]
	if root.ID != 1 || root.ParentID != nil || root.FolderType != "" {
		t.Errorf("unexpected root: %+v", root)
	}
	if len(root.Children) != 1 || *root.Children[0].ParentID != 1 {
		t.Fatalf("unexpected children: %+v", root.Children)
	}
	doc := root.Children[0].Documents[0]
	if doc.FileID != "f7" || !doc.Processed {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestClient_RootStructure_Error(t *testing.T) {
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("drive unavailable"))
	})

	client := NewClient(server.URL, testLogger())
	_, err := client.RootStructure(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *domain.UpstreamError, got %T", err)
	}
	if upErr.Status != http.StatusServiceUnavailable || upErr.Body != "drive unavailable" {
		t.Errorf("unexpected upstream error: %+v", upErr)
	}
	if !errors.Is(err, domain.ErrUpstream) {
		t.Error("error should match ErrUpstream")
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Error("503 should not match ErrNotFound")
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, testLogger())
	err := client.Sync(context.Background(), "")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_CreateFolder(t *testing.T) {
	var got map[string]interface{}
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/drive/folders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})

	parent := 4
	client := NewClient(server.URL, testLogger())
	err := client.CreateFolder(context.Background(), &drive.CreateFolderRequest{
		Name:           "Equipo Rojo",
		FolderType:     drive.FolderTypeEquipo,
		ParentFolderID: &parent,
		TeamID:         "team-9",
	})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	if got["name"] != "Equipo Rojo" || got["folder_type"] != "equipo" || got["team_id"] != "team-9" {
		t.Errorf("unexpected payload: %v", got)
	}
	if got["parent_folder_id"] != float64(4) {
		t.Errorf("parent_folder_id = %v, want 4", got["parent_folder_id"])
	}
}

func TestClient_CreateFolder_RootOmitsOptionalFields(t *testing.T) {
	var got map[string]interface{}
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	client := NewClient(server.URL, testLogger())
	if err := client.CreateFolder(context.Background(), &drive.CreateFolderRequest{Name: "P"}); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	for _, key := range []string{"parent_folder_id", "team_id", "folder_type"} {
		if _, ok := got[key]; ok {
			t.Errorf("payload should omit %q: %v", key, got)
		}
	}
}

func TestClient_UploadFile(t *testing.T) {
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/drive/folders/12/files" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile error: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "acta.docx" || string(data) != "contents" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		w.WriteHeader(http.StatusOK)
	})

	client := NewClient(server.URL, testLogger())
	if err := client.UploadFile(context.Background(), 12, "acta.docx", strings.NewReader("contents")); err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
}

func TestClient_Sync(t *testing.T) {
	tests := []struct {
		name     string
		folderID string
		wantSet  bool
	}{
		{name: "single folder", folderID: "drive-abc", wantSet: true},
		{name: "everything", folderID: "", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/drive/sync" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("ParseMultipartForm: %v", err)
				}
				_, set := r.MultipartForm.Value["folder_id"]
				if set != tt.wantSet {
					t.Errorf("folder_id present = %v, want %v", set, tt.wantSet)
				}
				if tt.wantSet && r.FormValue("folder_id") != tt.folderID {
					t.Errorf("folder_id = %q", r.FormValue("folder_id"))
				}
				w.WriteHeader(http.StatusOK)
			})

			client := NewClient(server.URL, testLogger())
			if err := client.Sync(context.Background(), tt.folderID); err != nil {
				t.Fatalf("Sync() error = %v", err)
			}
		})
	}
}

func TestClient_GetAnalysis(t *testing.T) {
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/drive/analyze-document/f1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"team_id": "t1", "initial_evaluation": {"final_score": 7.5}, "mentor_report": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "analysis not found"}`))
		}
	})

	client := NewClient(server.URL, testLogger())

	result, err := client.GetAnalysis(context.Background(), "f1")
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if result.TeamID != "t1" || string(result.MentorReport) != "[]" {
		t.Errorf("unexpected result: %+v", result)
	}

	_, err = client.GetAnalysis(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for 404, got %v", err)
	}
}

func TestClient_MarkProcessed(t *testing.T) {
	server := setupMockStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/drive/documents/33" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]bool
		json.NewDecoder(r.Body).Decode(&body)
		if !body["processed"] {
			t.Errorf("expected processed=true, got %v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	client := NewClient(server.URL, testLogger())
	if err := client.MarkProcessed(context.Background(), 33); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
}
