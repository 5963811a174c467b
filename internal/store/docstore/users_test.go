package docstore

import (
	"testing"

	"vaultchat/internal/models"
)

func TestAddUser(t *testing.T) {
	s := newTestStore(t)

	u, err := s.AddUser("user123", "TestUser", "public-key-data")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if u.UserID != "user123" || u.Username != "TestUser" {
		t.Errorf("Unexpected user record: %+v", u)
	}
	if u.CreatedAt == "" || u.LastActive == "" {
		t.Error("Expected timestamps to be stamped")
	}
	if u.MessageCount != 0 {
		t.Errorf("Expected zero message count, got %d", u.MessageCount)
	}

	// Reusing the id overwrites; last write wins.
	u2, err := s.AddUser("user123", "Renamed", "")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if u2.Username != "Renamed" {
		t.Errorf("Expected overwrite, got '%s'", u2.Username)
	}
	if len(s.GetAllUsers()) != 1 {
		t.Errorf("Expected 1 user, got %d", len(s.GetAllUsers()))
	}
}

func TestGetUserUnknown(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.GetUser("nope"); ok {
		t.Error("Expected ok=false for unknown user")
	}
}

func TestUpdateUserActivity(t *testing.T) {
	s := newTestStore(t)

	u, _ := s.AddUser("user123", "TestUser", "")
	before := u.LastActive

	if err := s.UpdateUserActivity("user123"); err != nil {
		t.Fatalf("UpdateUserActivity failed: %v", err)
	}
	after, _ := s.GetUser("user123")
	if after.LastActive < before {
		t.Errorf("Expected last_active to move forward: %s -> %s", before, after.LastActive)
	}

	// Unknown user is a no-op, not an error.
	if err := s.UpdateUserActivity("ghost"); err != nil {
		t.Errorf("Expected no-op for unknown user, got %v", err)
	}
}

func TestMessageCountTracksSender(t *testing.T) {
	s := newTestStore(t)

	s.AddUser("user123", "TestUser", "")
	s.AddPublicMessage(models.Message{ID: "m1", UserID: "user123", Content: "one"})
	s.AddPublicMessage(models.Message{ID: "m2", UserID: "user123", Content: "two"})
	// Unknown sender does not fail the write.
	if _, err := s.AddPublicMessage(models.Message{ID: "m3", UserID: "stranger", Content: "three"}); err != nil {
		t.Fatalf("AddPublicMessage failed for unknown sender: %v", err)
	}

	u, _ := s.GetUser("user123")
	if u.MessageCount != 2 {
		t.Errorf("Expected message count 2, got %d", u.MessageCount)
	}
}

func TestGetUserReturnsCopy(t *testing.T) {
	s := newTestStore(t)

	s.AddUser("user123", "TestUser", "")
	u, _ := s.GetUser("user123")
	u.Username = "Mutated"

	again, _ := s.GetUser("user123")
	if again.Username != "TestUser" {
		t.Error("Expected store state to be unaffected by caller mutation")
	}
}
