package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"vaultchat/internal/models"
	"vaultchat/internal/store/docstore"
)

func newTestHandler(t *testing.T) (*AdminHandler, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := docstore.New(filepath.Join(dir, "chat_data.db"), "test-password")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	return &AdminHandler{Store: s}, dir
}

func TestStats(t *testing.T) {
	handler, _ := newTestHandler(t)

	handler.Store.AddUser("user123", "TestUser", "")
	handler.Store.CreateGroup("devs", "TestUser", "pw")
	handler.Store.AddPublicMessage(models.Message{ID: "m1", UserID: "user123", Content: "hi"})

	req := httptest.NewRequest("GET", "/admin/stats", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.Stats).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var response struct {
		Stats  models.Stats                   `json:"stats"`
		Info   models.StoreInfo               `json:"database_info"`
		Groups map[string]models.GroupSummary `json:"groups"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Stats.TotalUsers != 1 || response.Stats.TotalGroups != 1 {
		t.Errorf("Unexpected stats: %+v", response.Stats)
	}
	if !response.Info.FileExists {
		t.Error("Expected database_info to report the backing file")
	}
	g, ok := response.Groups["devs"]
	if !ok || !g.HasPassword {
		t.Errorf("Expected group summary with has_password, got %+v", response.Groups)
	}

	// The raw body must not leak password material in any form.
	if strings.Contains(rr.Body.String(), "pw") || strings.Contains(rr.Body.String(), "encrypted_password") {
		t.Error("Expected no password material in the stats response")
	}
}

func TestCreateBackup(t *testing.T) {
	handler, dir := newTestHandler(t)
	handler.Store.AddUser("user123", "TestUser", "")

	body, _ := json.Marshal(map[string]string{"path": filepath.Join(dir, "backup.db")})
	req := httptest.NewRequest("POST", "/admin/backup", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.CreateBackup).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusCreated)
	}

	var response map[string]string
	json.NewDecoder(rr.Body).Decode(&response)
	if response["backup_file"] == "" {
		t.Fatal("Expected backup_file in response")
	}

	// The backup must restore cleanly.
	if err := handler.Store.RestoreFromBackup(response["backup_file"]); err != nil {
		t.Errorf("Expected backup to restore: %v", err)
	}
}
