package docstore

import (
	"os"
	"path/filepath"

	"vaultchat/internal/models"
)

// Stats aggregates counts across the document for the admin surface.
func (s *DocStore) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.doc.PublicMessages)
	for _, g := range s.doc.Groups {
		total += len(g.Messages)
	}

	return models.Stats{
		TotalUsers:     len(s.doc.Users),
		TotalGroups:    len(s.doc.Groups),
		TotalMessages:  total,
		PublicMessages: len(s.doc.PublicMessages),
		ActiveSessions: len(s.doc.Sessions),
		DatabaseSize:   fileSize(s.path),
		CreatedAt:      s.doc.Metadata.CreatedAt,
		LastUpdated:    s.doc.Metadata.LastUpdated,
	}
}

// Info reports the backing file and per-collection counts.
func (s *DocStore) Info() models.StoreInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		abs = s.path
	}
	_, statErr := os.Stat(s.path)

	return models.StoreInfo{
		FilePath:       abs,
		FileExists:     statErr == nil,
		FileSizeBytes:  fileSize(s.path),
		Users:          len(s.doc.Users),
		PublicMessages: len(s.doc.PublicMessages),
		Groups:         len(s.doc.Groups),
		Sessions:       len(s.doc.Sessions),
		Metadata:       s.doc.Metadata,
	}
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
