package models

// Document is the root of everything the store persists. It is
// serialized to JSON and encrypted as a single unit; there is no other
// at-rest representation.
type Document struct {
	Users          map[string]*User    `json:"users"`
	PublicMessages []Message           `json:"public_messages"`
	Groups         map[string]*Group   `json:"groups"`
	Sessions       map[string]*Session `json:"user_sessions"`
	Metadata       Metadata            `json:"metadata"`
}

// Timestamps are stored as RFC 3339 strings rather than time.Time so a
// corrupt value survives decoding and can be handled by the session
// sweep instead of failing the whole document.

type User struct {
	UserID       string            `json:"user_id"`
	Username     string            `json:"username"`
	PublicKey    string            `json:"public_key"`
	CreatedAt    string            `json:"created_at"`
	LastActive   string            `json:"last_active"`
	MessageCount int               `json:"message_count"`
	GroupsJoined []string          `json:"groups_joined"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Message is both the wire view and the at-rest record. Before a message
// is appended to the document the plaintext Content/EncryptedContent
// fields are moved into EncryptedMessage/DoubleEncryptedContent; reads
// reverse the mapping. The plaintext is never written to disk.
type Message struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	Content          string `json:"message,omitempty"`
	EncryptedContent string `json:"encrypted_content,omitempty"` // opaque blob from the sender
	Timestamp        string `json:"timestamp"`
	Room             string `json:"room,omitempty"`
	StoredAt         string `json:"stored_at,omitempty"`

	EncryptedMessage       string `json:"encrypted_message,omitempty"`
	DoubleEncryptedContent string `json:"double_encrypted_content,omitempty"`
}

type Group struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Creator           string            `json:"creator"`
	EncryptedPassword string            `json:"encrypted_password"`
	Password          string            `json:"-"` // decrypted for internal checks, never serialized
	CreatedAt         string            `json:"created_at"`
	Members           []string          `json:"members"`
	Messages          []Message         `json:"messages"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// GroupSummary is the password-free listing shape handed to clients.
type GroupSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Creator      string `json:"creator"`
	CreatedAt    string `json:"created_at"`
	MemberCount  int    `json:"member_count"`
	MessageCount int    `json:"message_count"`
	HasPassword  bool   `json:"has_password"`
}

// Session binds a live connection identifier (the map key in the
// Document) to a user identity. It copies user_id/username rather than
// referencing the User record.
type Session struct {
	Username     string `json:"username"`
	UserID       string `json:"user_id"`
	PublicKey    string `json:"public_key"`
	SessionStart string `json:"session_start"`
	LastActivity string `json:"last_activity"`
}

type Metadata struct {
	CreatedAt     string `json:"created_at"`
	LastUpdated   string `json:"last_updated"`
	Version       string `json:"version"`
	BackupCreated string `json:"backup_created,omitempty"`
	OriginalFile  string `json:"original_file,omitempty"`
	RestoredAt    string `json:"restored_at,omitempty"`
	RestoredFrom  string `json:"restored_from,omitempty"`
}

// Stats is the aggregate view served by the admin endpoint.
type Stats struct {
	TotalUsers     int    `json:"total_users"`
	TotalGroups    int    `json:"total_groups"`
	TotalMessages  int    `json:"total_messages"`
	PublicMessages int    `json:"public_messages"`
	ActiveSessions int    `json:"active_sessions"`
	DatabaseSize   int64  `json:"database_size"`
	CreatedAt      string `json:"created_at"`
	LastUpdated    string `json:"last_updated"`
}

// StoreInfo describes the backing file and per-collection counts.
type StoreInfo struct {
	FilePath       string   `json:"file_path"`
	FileExists     bool     `json:"file_exists"`
	FileSizeBytes  int64    `json:"file_size_bytes"`
	Users          int      `json:"users"`
	PublicMessages int      `json:"public_messages"`
	Groups         int      `json:"groups"`
	Sessions       int      `json:"sessions"`
	Metadata       Metadata `json:"metadata"`
}
