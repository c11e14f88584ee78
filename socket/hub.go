package socket

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"creatorhub/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	SnapshotType = "SNAPSHOT" // Full listing for a topic
	DraftType    = "DRAFT"    // Unsaved project content from another session
	ErrorType    = "ERROR"    // Listing could not be loaded

	TopicProjects  = "projects"
	TopicScheduled = "scheduled"

	DefaultSaveInterval = 10 * time.Second
)

type WSMessage struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Draft is the payload of a DRAFT message.
type Draft struct {
	ProjectID string `json:"project_id"`
	Content   string `json:"content"`
}

// DraftKey identifies one cached draft.
type DraftKey struct {
	UserID    string
	ProjectID string
}

// SnapshotSource loads the current listing a topic shows to a user.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID, topic string) (any, error)
}

// SnapshotFunc adapts a function to SnapshotSource.
type SnapshotFunc func(ctx context.Context, userID, topic string) (any, error)

func (f SnapshotFunc) Snapshot(ctx context.Context, userID, topic string) (any, error) {
	return f(ctx, userID, topic)
}

// DraftStore persists draft content.
type DraftStore interface {
	SaveDraft(ctx context.Context, userID, projectID, content string) error
}

// Envelope is a client message on its way into the hub.
type Envelope struct {
	Sender  *Client
	Message WSMessage
}

// ValidTopic reports whether clients may listen on topic.
func ValidTopic(topic string) bool {
	return topic == TopicProjects || topic == TopicScheduled
}

// RoomKey groups every session of one user on one topic.
func RoomKey(topic, userID string) string {
	return topic + ":" + userID
}

type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Envelope
	Register   chan *Client
	Unregister chan *Client
	// Drafts live in memory until the SaveWorker or the last session flushes them
	DraftCache  map[DraftKey]string
	DirtyDrafts map[DraftKey]bool
	mu          sync.Mutex

	snapshots    SnapshotSource
	drafts       DraftStore
	saveInterval time.Duration
	upgrader     websocket.Upgrader
	done         chan struct{}
}

type HubOption func(*Hub)

func WithSaveInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.saveInterval = d
		}
	}
}

// WithAllowedOrigins limits which browser origins may open a session.
// "*" allows any origin.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) {
		h.upgrader = newUpgrader(origins)
	}
}

func NewHub(snapshots SnapshotSource, drafts DraftStore, opts ...HubOption) *Hub {
	h := &Hub{
		Rooms:        make(map[string]map[*Client]bool),
		Broadcast:    make(chan Envelope),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		DraftCache:   make(map[DraftKey]string),
		DirtyDrafts:  make(map[DraftKey]bool),
		snapshots:    snapshots,
		drafts:       drafts,
		saveInterval: DefaultSaveInterval,
		upgrader:     newUpgrader(nil),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run owns room membership until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			key := client.room()
			if h.Rooms[key] == nil {
				h.Rooms[key] = make(map[*Client]bool)
			}
			h.Rooms[key][client] = true
			h.mu.Unlock()

			// The new session gets the current listing; the others already have it.
			h.sendSnapshot(ctx, client)

		case client := <-h.Unregister:
			h.mu.Lock()
			emptied := h.removeLocked(client)
			h.mu.Unlock()

			if emptied {
				logger.Sugar.Infof("Closed empty room: %s", client.room())
				if client.Topic == TopicProjects {
					h.flush(ctx, func(k DraftKey) bool { return k.UserID == client.UserID })
				}
			}

		case env := <-h.Broadcast:
			h.handleDraft(env)
		}
	}
}

// validProjectID matches the store's UUID id column; anything else could
// never be saved and would stay dirty forever.
func validProjectID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func (h *Hub) handleDraft(env Envelope) {
	msg := env.Message
	var d Draft
	if err := json.Unmarshal(msg.Payload, &d); err != nil {
		logger.Sugar.Warnf("Dropping malformed draft from user %s: %v", msg.UserID, err)
		return
	}
	if !validProjectID(d.ProjectID) {
		logger.Sugar.Warnf("Dropping draft from user %s for invalid project id %q", msg.UserID, d.ProjectID)
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling draft message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	key := DraftKey{UserID: msg.UserID, ProjectID: d.ProjectID}
	h.DraftCache[key] = d.Content
	h.DirtyDrafts[key] = true
	h.fanoutLocked(RoomKey(msg.Topic, msg.UserID), payload, env.Sender)
}

// Notify reloads the listing for userID on topic and pushes it to every open
// session. Services call it after each mutation.
func (h *Hub) Notify(ctx context.Context, userID, topic string) {
	key := RoomKey(topic, userID)
	h.mu.Lock()
	listeners := len(h.Rooms[key])
	h.mu.Unlock()
	if listeners == 0 {
		return
	}

	payload := h.snapshotMessage(ctx, userID, topic)
	h.mu.Lock()
	h.fanoutLocked(key, payload, nil)
	h.mu.Unlock()
}

// DiscardDraft forgets cached content for a project that was saved or
// deleted through the API, so the SaveWorker does not write it back.
func (h *Hub) DiscardDraft(userID, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := DraftKey{UserID: userID, ProjectID: projectID}
	delete(h.DraftCache, key)
	delete(h.DirtyDrafts, key)
}

// SaveWorker flushes dirty drafts every save interval and once more on shutdown.
func (h *Hub) SaveWorker(ctx context.Context) {
	ticker := time.NewTicker(h.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			h.FlushDrafts(final)
			cancel()
			return
		case <-ticker.C:
			h.FlushDrafts(ctx)
		}
	}
}

// FlushDrafts writes every dirty draft and returns how many were saved.
func (h *Hub) FlushDrafts(ctx context.Context) int {
	return h.flush(ctx, func(DraftKey) bool { return true })
}

func (h *Hub) flush(ctx context.Context, match func(DraftKey) bool) int {
	if h.drafts == nil {
		return 0
	}

	toSave := make(map[DraftKey]string)
	h.mu.Lock()
	for key, dirty := range h.DirtyDrafts {
		if dirty && match(key) {
			toSave[key] = h.DraftCache[key]
		}
	}
	h.mu.Unlock()

	saved := 0
	var touched []string
	for key, content := range toSave {
		if err := h.drafts.SaveDraft(ctx, key.UserID, key.ProjectID, content); err != nil {
			logger.Sugar.Errorf("Failed to save draft for project %s: %v", key.ProjectID, err)
			continue // stays dirty, retried on the next tick
		}
		saved++
		if !slices.Contains(touched, key.UserID) {
			touched = append(touched, key.UserID)
		}

		h.mu.Lock()
		// Only clean if nothing newer arrived while saving.
		if cur, ok := h.DraftCache[key]; ok && cur == content {
			delete(h.DirtyDrafts, key)
			delete(h.DraftCache, key)
		}
		h.mu.Unlock()
		logger.Sugar.Infof("Auto-saved draft for project %s", key.ProjectID)
	}

	// Saved drafts change updated_at and order in the project listing.
	for _, userID := range touched {
		h.Notify(ctx, userID, TopicProjects)
	}
	return saved
}

func (h *Hub) sendSnapshot(ctx context.Context, client *Client) {
	payload := h.snapshotMessage(ctx, client.UserID, client.Topic)

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.Rooms[client.room()][client] {
		return
	}
	select {
	case client.Send <- payload:
	default:
		logger.Sugar.Warnf("Client %s's send buffer is full on join. Dropping.", client.UserID)
		h.removeLocked(client)
		client.close()
	}
}

func (h *Hub) snapshotMessage(ctx context.Context, userID, topic string) []byte {
	msg := WSMessage{Type: SnapshotType, Topic: topic}
	data, err := h.snapshots.Snapshot(ctx, userID, topic)
	if err == nil {
		msg.Payload, err = json.Marshal(data)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to load %s snapshot for user %s: %v", topic, userID, err)
		msg.Type = ErrorType
		msg.Payload, _ = json.Marshal(map[string]string{"message": "could not load " + topic})
	}
	out, _ := json.Marshal(msg)
	return out
}

// fanoutLocked queues payload for every session in the room except skip.
// Sessions whose buffer is full are dropped.
func (h *Hub) fanoutLocked(key string, payload []byte, skip *Client) {
	for client := range h.Rooms[key] {
		if client == skip {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			logger.Sugar.Warnf("Client %s's send buffer is full. Dropping.", client.UserID)
			h.removeLocked(client)
			client.close()
		}
	}
}

// removeLocked detaches client and reports whether its room became empty.
func (h *Hub) removeLocked(client *Client) bool {
	key := client.room()
	clients, ok := h.Rooms[key]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Rooms, key)
		return true
	}
	return false
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
		}
		delete(h.Rooms, key)
	}
}
