// Package ws streams live view snapshots to connected clients. Each
// connection serves exactly one view (the signed-in user's bookmarks, or
// one item's ratings and comments); the underlying store subscriptions are
// opened on connect and released when the connection goes away, so
// navigating between views never leaks listeners.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cinelog/internal/bookmarks"
	"cinelog/internal/catalog"
	"cinelog/internal/engagement"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/store"
	"cinelog/internal/utils"
	"cinelog/internal/views"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is one push to the client.
type Message struct {
	Type string      `json:"type"` // "bookmarks" or "engagement"
	Data interface{} `json:"data"`
}

// Handler upgrades /api/live requests and streams the requested view.
type Handler struct {
	bookmarks  *bookmarks.Manager
	engagement *engagement.Aggregator
	upgrader   websocket.Upgrader

	mu     sync.Mutex
	byUser map[string]map[*conn]struct{}
}

// NewHandler wires the live endpoint. It observes identity changes so a
// sign-out (or session expiry) drops that user's bookmark streams.
func NewHandler(provider *identity.Provider, bm *bookmarks.Manager, eng *engagement.Aggregator) *Handler {
	h := &Handler{
		bookmarks:  bm,
		engagement: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		byUser: make(map[string]map[*conn]struct{}),
	}

	provider.OnUserChanged(func(uid string, user *identity.User) {
		if user != nil {
			return
		}
		h.closeUser(uid)
	})
	return h
}

// ServeHTTP handles GET /api/live?view=bookmarks and
// GET /api/live?view=item&type={movies|series}&id={itemID}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view := utils.GetQueryParam(r, "view", "")

	var (
		uid  string
		open func(c *conn) (store.Subscription, error)
	)

	switch view {
	case "bookmarks":
		user, err := identity.FromContext(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		uid = user.UID
		open = func(c *conn) (store.Subscription, error) {
			return h.bookmarks.Watch(user, func(set []bookmarks.Bookmark) {
				c.push(Message{Type: "bookmarks", Data: views.BookmarkCards(set)})
			})
		}

	case "item":
		contentType, ok := catalog.ParseType(utils.GetQueryParam(r, "type", ""))
		if !ok {
			http.Error(w, "Invalid content type", http.StatusBadRequest)
			return
		}
		itemID := utils.GetQueryParam(r, "id", "")
		if itemID == "" {
			http.Error(w, "Item ID is required", http.StatusBadRequest)
			return
		}
		open = func(c *conn) (store.Subscription, error) {
			sub := h.engagement.WatchItem(contentType, itemID, func(state engagement.ItemEngagement) {
				c.push(Message{Type: "engagement", Data: state})
			})
			return sub, nil
		}

	default:
		http.Error(w, "Unknown view", http.StatusBadRequest)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &conn{socket: socket, send: make(chan Message, 16), done: make(chan struct{})}

	sub, err := open(c)
	if err != nil {
		socket.Close()
		return
	}
	c.sub = sub

	if uid != "" {
		h.track(uid, c)
		defer h.untrack(uid, c)
	}

	go c.writePump()
	c.readPump()
	c.close()
}

func (h *Handler) track(uid string, c *conn) {
	h.mu.Lock()
	if h.byUser[uid] == nil {
		h.byUser[uid] = make(map[*conn]struct{})
	}
	h.byUser[uid][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(uid string, c *conn) {
	h.mu.Lock()
	if set, ok := h.byUser[uid]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, uid)
		}
	}
	h.mu.Unlock()
}

func (h *Handler) closeUser(uid string) {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.byUser[uid]))
	for c := range h.byUser[uid] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

// conn is one live connection.
type conn struct {
	socket *websocket.Conn
	send   chan Message
	sub    store.Subscription

	once sync.Once
	done chan struct{}
}

// push queues a message, dropping it when the client cannot keep up. Every
// message is a full snapshot, so a dropped one is superseded by the next.
func (c *conn) push(msg Message) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		c.sub.Close()
		close(c.done)
		c.socket.Close()
	})
}

func (c *conn) readPump() {
	c.socket.SetReadLimit(512)
	if err := c.socket.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}
