package handlers

import (
	"encoding/json"
	"net/http"

	"vaultchat/internal/store"
)

// AdminHandler serves the operator-only surface. It sits behind the
// admin-token middleware; nothing here is reachable by chat clients.
type AdminHandler struct {
	Store store.Store
}

// Stats reports aggregate counts, backing-file details and the group
// summaries. Group summaries never contain password material.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"stats":         h.Store.Stats(),
		"database_info": h.Store.Info(),
		"groups":        h.Store.GetAllGroups(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type backupRequest struct {
	Path string `json:"path"`
}

// CreateBackup snapshots the store to an encrypted backup file. An
// empty or absent path picks the timestamped default.
func (h *AdminHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	path, err := h.Store.CreateBackup(req.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"backup_file": path})
}
