package store

import (
	"errors"
	"time"

	"vaultchat/internal/models"
)

var (
	ErrGroupExists   = errors.New("group already exists")
	ErrGroupNotFound = errors.New("group not found")
	ErrWrongPassword = errors.New("wrong group password")
	ErrNotMember     = errors.New("not a group member")
)

// Store is the persistence surface consumed by the websocket hub and
// the admin handlers. Implementations persist synchronously: when a
// mutating call returns without error, the change is on disk.
type Store interface {
	// User operations
	AddUser(userID, username, publicKey string) (*models.User, error)
	UpdateUserActivity(userID string) error
	GetUser(userID string) (*models.User, bool)
	GetAllUsers() map[string]*models.User

	// Message operations. Reads return the field-decrypted plaintext
	// view in chronological order; limit <= 0 means the default of 50.
	AddPublicMessage(msg models.Message) (models.Message, error)
	GetPublicMessages(limit int) []models.Message
	AddGroupMessage(name string, msg models.Message) (models.Message, error)
	GetGroupMessages(name string, limit int) []models.Message

	// Group operations
	CreateGroup(name, creator, password string) (*models.Group, error)
	JoinGroup(name, username, password string) error
	LeaveGroup(name, username string) error
	GetGroup(name string) (*models.Group, bool)
	GetAllGroups() map[string]models.GroupSummary

	// Session operations. UpdateSession merges the non-empty fields of
	// update into the existing record; both it and RemoveSession are
	// no-ops for unknown connection ids.
	AddSession(connID string, sess models.Session) error
	UpdateSession(connID string, update models.Session) error
	RemoveSession(connID string) error
	GetSession(connID string) (*models.Session, bool)
	GetAllSessions() map[string]*models.Session
	CleanupExpiredSessions(maxAge time.Duration) (int, error)

	// Maintenance
	CreateBackup(path string) (string, error)
	RestoreFromBackup(path string) error
	Stats() models.Stats
	Info() models.StoreInfo
}
