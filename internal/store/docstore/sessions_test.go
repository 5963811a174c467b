package docstore

import (
	"testing"
	"time"

	"vaultchat/internal/models"
)

func TestAddSession(t *testing.T) {
	s := newTestStore(t)

	err := s.AddSession("conn1", models.Session{Username: "alice", UserID: "user123", PublicKey: "pk"})
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	sess, ok := s.GetSession("conn1")
	if !ok {
		t.Fatal("Expected session to exist")
	}
	if sess.Username != "alice" || sess.UserID != "user123" {
		t.Errorf("Unexpected session: %+v", sess)
	}
	if sess.SessionStart == "" || sess.LastActivity == "" {
		t.Error("Expected session timestamps to be stamped")
	}

	// Re-adding the same connection id overwrites.
	s.AddSession("conn1", models.Session{Username: "bob", UserID: "user456"})
	sess, _ = s.GetSession("conn1")
	if sess.Username != "bob" {
		t.Errorf("Expected overwrite, got '%s'", sess.Username)
	}
	if len(s.GetAllSessions()) != 1 {
		t.Errorf("Expected 1 session, got %d", len(s.GetAllSessions()))
	}
}

func TestUpdateSession(t *testing.T) {
	s := newTestStore(t)

	s.AddSession("conn1", models.Session{Username: "alice", UserID: "user123", PublicKey: "pk"})
	before, _ := s.GetSession("conn1")

	if err := s.UpdateSession("conn1", models.Session{PublicKey: "new-pk"}); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	after, _ := s.GetSession("conn1")
	if after.PublicKey != "new-pk" {
		t.Errorf("Expected merged public key, got '%s'", after.PublicKey)
	}
	if after.Username != "alice" || after.UserID != "user123" {
		t.Error("Expected untouched fields to be preserved")
	}
	if after.LastActivity < before.LastActivity {
		t.Error("Expected last_activity to be refreshed")
	}

	// Unknown id is a no-op.
	if err := s.UpdateSession("ghost", models.Session{Username: "x"}); err != nil {
		t.Errorf("Expected no-op for unknown session, got %v", err)
	}
}

func TestRemoveSession(t *testing.T) {
	s := newTestStore(t)

	s.AddSession("conn1", models.Session{Username: "alice"})
	if err := s.RemoveSession("conn1"); err != nil {
		t.Fatalf("RemoveSession failed: %v", err)
	}
	if _, ok := s.GetSession("conn1"); ok {
		t.Error("Expected session to be gone")
	}

	if err := s.RemoveSession("conn1"); err != nil {
		t.Errorf("Expected no-op for unknown session, got %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestStore(t)

	s.AddSession("fresh", models.Session{Username: "alice"})
	s.AddSession("stale", models.Session{Username: "bob"})
	s.AddSession("corrupt", models.Session{Username: "carol"})

	// Backdate directly; the stamps are strings inside the document.
	s.mu.Lock()
	s.doc.Sessions["stale"].LastActivity = time.Now().Add(-48 * time.Hour).Format(time.RFC3339Nano)
	s.doc.Sessions["corrupt"].LastActivity = "not-a-timestamp"
	s.mu.Unlock()

	removed, err := s.CleanupExpiredSessions(24 * time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 sessions removed, got %d", removed)
	}

	if _, ok := s.GetSession("fresh"); !ok {
		t.Error("Expected fresh session to survive")
	}
	if _, ok := s.GetSession("stale"); ok {
		t.Error("Expected stale session to be removed")
	}
	if _, ok := s.GetSession("corrupt"); ok {
		t.Error("Expected session with unparsable timestamp to be removed")
	}

	// Nothing left to remove.
	removed, err = s.CleanupExpiredSessions(24 * time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed on second sweep, got %d", removed)
	}
}
