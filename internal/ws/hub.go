package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"vaultchat/internal/models"
	"vaultchat/internal/store"
)

const publicRoom = "public"

// Event is the wire envelope for everything exchanged with a client.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type clientEvent struct {
	client *Client
	event  Event
}

// Hub maps websocket events onto store operations and fans the results
// back out to the interested rooms. All hub and room state is touched
// only from the Run goroutine; the store does its own locking and knows
// nothing about rooms or connections.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Inbound events from the clients.
	events chan clientEvent

	store store.Store
}

func NewHub(store store.Store) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan clientEvent),
		store:      store,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.disconnect(client)
				delete(h.clients, client)
				close(client.send)
			}
		case ev := <-h.events:
			h.handle(ev.client, ev.event)
		}
	}
}

// disconnect notifies the rooms the client was in and drops its
// session.
func (h *Hub) disconnect(client *Client) {
	sess, ok := h.store.GetSession(client.id)
	if ok {
		for room := range client.rooms {
			h.broadcastRoom(room, "user_left", map[string]string{
				"username": sess.Username,
				"room":     room,
			}, client)
		}
	}
	if err := h.store.RemoveSession(client.id); err != nil {
		log.Printf("Error removing session %s: %v", client.id, err)
	}
}

// ---------- event payloads ----------

type joinChatRequest struct {
	Username  string `json:"username"`
	PublicKey string `json:"public_key"`
}

type sendMessageRequest struct {
	GroupName        string `json:"group_name"`
	Message          string `json:"message"`
	EncryptedContent string `json:"encrypted_content"`
}

type groupRequest struct {
	GroupName string `json:"group_name"`
	Password  string `json:"password"`
	Limit     int    `json:"limit"`
}

func (h *Hub) handle(client *Client, ev Event) {
	switch ev.Type {
	case "join_chat":
		var req joinChatRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			h.sendError(client, "Malformed request")
			return
		}
		h.handleJoinChat(client, req)
	case "send_public_message":
		var req sendMessageRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			h.sendError(client, "Malformed request")
			return
		}
		h.handlePublicMessage(client, req)
	case "send_group_message":
		var req sendMessageRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			h.sendError(client, "Malformed request")
			return
		}
		h.handleGroupMessage(client, req)
	case "create_group", "join_group", "leave_group", "get_group_messages":
		var req groupRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			h.sendError(client, "Malformed request")
			return
		}
		switch ev.Type {
		case "create_group":
			h.handleCreateGroup(client, req)
		case "join_group":
			h.handleJoinGroup(client, req)
		case "leave_group":
			h.handleLeaveGroup(client, req)
		case "get_group_messages":
			h.handleGetGroupMessages(client, req)
		}
	default:
		h.sendError(client, "Unknown event type")
	}
}

func (h *Hub) handleJoinChat(client *Client, req joinChatRequest) {
	userID := uuid.NewString()

	if _, err := h.store.AddUser(userID, req.Username, req.PublicKey); err != nil {
		log.Printf("Error adding user: %v", err)
		h.sendError(client, "Failed to join chat")
		return
	}
	err := h.store.AddSession(client.id, models.Session{
		Username:  req.Username,
		UserID:    userID,
		PublicKey: req.PublicKey,
	})
	if err != nil {
		log.Printf("Error adding session: %v", err)
	}

	client.rooms[publicRoom] = true

	h.sendTo(client, "chat_joined", map[string]any{
		"user_id":          userID,
		"username":         req.Username,
		"public_messages":  h.store.GetPublicMessages(0),
		"available_groups": h.groupNames(),
	})
	h.broadcastRoom(publicRoom, "user_joined", map[string]string{
		"username": req.Username,
		"room":     publicRoom,
	}, client)
}

func (h *Hub) handlePublicMessage(client *Client, req sendMessageRequest) {
	sess, ok := h.store.GetSession(client.id)
	if !ok {
		return
	}

	msg := models.Message{
		ID:               uuid.NewString(),
		UserID:           sess.UserID,
		Username:         sess.Username,
		Content:          req.Message,
		EncryptedContent: req.EncryptedContent,
		Timestamp:        time.Now().Format(time.RFC3339Nano),
		Room:             publicRoom,
	}
	if _, err := h.store.AddPublicMessage(msg); err != nil {
		log.Printf("Error saving message: %v", err)
		h.sendError(client, "Failed to send message")
		return
	}
	if err := h.store.UpdateUserActivity(sess.UserID); err != nil {
		log.Printf("Error updating activity: %v", err)
	}

	// Broadcast the plaintext view; only the stored copy is encrypted.
	h.broadcastRoom(publicRoom, "new_message", msg, nil)
}

func (h *Hub) handleCreateGroup(client *Client, req groupRequest) {
	sess, ok := h.store.GetSession(client.id)
	if !ok {
		return
	}

	g, err := h.store.CreateGroup(req.GroupName, sess.Username, req.Password)
	if errors.Is(err, store.ErrGroupExists) {
		h.sendError(client, "Group already exists")
		return
	}
	if err != nil {
		log.Printf("Error creating group: %v", err)
		h.sendError(client, "Failed to create group")
		return
	}

	client.rooms[req.GroupName] = true

	h.sendTo(client, "group_created", map[string]string{
		"group_name": req.GroupName,
		"group_id":   g.ID,
	})
	h.broadcastAll("group_list_updated", map[string]any{
		"available_groups": h.groupNames(),
	})
}

func (h *Hub) handleJoinGroup(client *Client, req groupRequest) {
	sess, ok := h.store.GetSession(client.id)
	if !ok {
		return
	}

	if err := h.store.JoinGroup(req.GroupName, sess.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrGroupNotFound) || errors.Is(err, store.ErrWrongPassword) {
			h.sendError(client, "Failed to join group. Check password.")
		} else {
			log.Printf("Error joining group: %v", err)
			h.sendError(client, "Failed to join group")
		}
		return
	}

	client.rooms[req.GroupName] = true

	var members []string
	if g, ok := h.store.GetGroup(req.GroupName); ok {
		members = g.Members
	}
	h.sendTo(client, "group_joined", map[string]any{
		"group_name": req.GroupName,
		"messages":   h.store.GetGroupMessages(req.GroupName, 0),
		"members":    members,
	})
	h.broadcastRoom(req.GroupName, "user_joined", map[string]string{
		"username": sess.Username,
		"room":     req.GroupName,
	}, client)
}

func (h *Hub) handleLeaveGroup(client *Client, req groupRequest) {
	sess, ok := h.store.GetSession(client.id)
	if !ok {
		return
	}

	err := h.store.LeaveGroup(req.GroupName, sess.Username)
	if err != nil && !errors.Is(err, store.ErrGroupNotFound) && !errors.Is(err, store.ErrNotMember) {
		log.Printf("Error leaving group: %v", err)
	}
	delete(client.rooms, req.GroupName)

	h.sendTo(client, "group_left", map[string]string{
		"group_name": req.GroupName,
	})
	h.broadcastRoom(req.GroupName, "user_left", map[string]string{
		"username": sess.Username,
		"room":     req.GroupName,
	}, nil)
}

func (h *Hub) handleGroupMessage(client *Client, req sendMessageRequest) {
	sess, ok := h.store.GetSession(client.id)
	if !ok {
		return
	}

	msg := models.Message{
		ID:               uuid.NewString(),
		UserID:           sess.UserID,
		Username:         sess.Username,
		Content:          req.Message,
		EncryptedContent: req.EncryptedContent,
		Timestamp:        time.Now().Format(time.RFC3339Nano),
		Room:             req.GroupName,
	}
	if _, err := h.store.AddGroupMessage(req.GroupName, msg); err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			h.sendError(client, "Group does not exist")
		} else {
			log.Printf("Error saving group message: %v", err)
			h.sendError(client, "Failed to send message")
		}
		return
	}
	if err := h.store.UpdateUserActivity(sess.UserID); err != nil {
		log.Printf("Error updating activity: %v", err)
	}

	h.broadcastRoom(req.GroupName, "new_message", msg, nil)
}

func (h *Hub) handleGetGroupMessages(client *Client, req groupRequest) {
	h.sendTo(client, "group_messages", map[string]any{
		"group_name": req.GroupName,
		"messages":   h.store.GetGroupMessages(req.GroupName, req.Limit),
	})
}

// ---------- delivery ----------

func (h *Hub) groupNames() []string {
	groups := h.store.GetAllGroups()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) sendError(client *Client, message string) {
	h.sendTo(client, "error", map[string]string{"message": message})
}

func (h *Hub) sendTo(client *Client, typ string, payload any) {
	msg := marshalEvent(typ, payload)
	if msg == nil {
		return
	}
	h.deliver(client, msg)
}

// broadcastRoom sends to every client in room, skipping except when it
// is non-nil.
func (h *Hub) broadcastRoom(room, typ string, payload any, except *Client) {
	msg := marshalEvent(typ, payload)
	if msg == nil {
		return
	}
	for client := range h.clients {
		if client == except || !client.rooms[room] {
			continue
		}
		h.deliver(client, msg)
	}
}

func (h *Hub) broadcastAll(typ string, payload any) {
	msg := marshalEvent(typ, payload)
	if msg == nil {
		return
	}
	for client := range h.clients {
		h.deliver(client, msg)
	}
}

func (h *Hub) deliver(client *Client, msg []byte) {
	select {
	case client.send <- msg:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

func marshalEvent(typ string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling %s payload: %v", typ, err)
		return nil
	}
	msg, err := json.Marshal(Event{Type: typ, Data: data})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", typ, err)
		return nil
	}
	return msg
}
