package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/reshimgathi/core/internal/pkg/jwt"
	pkgredis "github.com/reshimgathi/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	presenceKeyPrefix = "socket:"
	statusKeyPrefix   = "user_status:"

	// EventNewConversation is emitted to a user when a connection request
	// they sent is accepted.
	EventNewConversation = "new-conversation"
)

// Hub authenticates socket connections with an access token and maintains
// userId → connection presence in Redis. One presence entry per user:
// last-connected wins, deleted on disconnect.
type Hub struct {
	mu      sync.RWMutex
	sockets map[string]*socketio.Socket // userID → live socket

	rc     *pkgredis.Client
	logger *zap.Logger
	sio    *socketio.Server
}

func NewHub(rc *pkgredis.Client, logger *zap.Logger) *Hub {
	sio := socketio.NewServer(nil, nil)
	h := &Hub{
		sockets: make(map[string]*socketio.Socket),
		rc:      rc,
		logger:  logger,
		sio:     sio,
	}
	h.registerNamespace()
	return h
}

func (h *Hub) registerNamespace() {
	ns := h.sio.Of("/", nil)
	_ = ns.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}

		// Connection auth checks the token signature only; session liveness
		// is enforced per HTTP request by the gate.
		claims, err := jwt.ParseAccess(extractToken(client))
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("socket auth failed", zap.Error(err))
			}
			client.Disconnect(true)
			return
		}
		userID := claims.UserID
		sid := string(client.Id())

		h.mu.Lock()
		h.sockets[userID] = client
		h.mu.Unlock()
		h.setPresence(userID, sid)

		if h.logger != nil {
			h.logger.Info("socket connected", zap.String("user_id", userID), zap.String("sid", sid))
		}

		_ = client.On("disconnect", func(_ ...any) {
			h.mu.Lock()
			// A newer connection may have replaced this one already.
			if cur, ok := h.sockets[userID]; ok && string(cur.Id()) == sid {
				delete(h.sockets, userID)
			}
			h.mu.Unlock()
			h.clearPresence(userID, sid)
			if h.logger != nil {
				h.logger.Info("socket disconnected", zap.String("user_id", userID))
			}
		})
	})
}

// SendToUser resolves the user's active connection through the presence
// cache and emits the event. A user without presence is silently skipped.
func (h *Hub) SendToUser(ctx context.Context, userID, event string, payload interface{}) error {
	if h.rc == nil {
		return nil
	}
	sid, err := h.rc.Get(ctx, presenceKeyPrefix+userID)
	if err != nil {
		return err
	}
	if sid == "" {
		return nil
	}

	h.mu.RLock()
	client := h.sockets[userID]
	h.mu.RUnlock()
	if client == nil || string(client.Id()) != sid {
		return nil
	}
	return client.Emit(event, payload)
}

// Online reports whether a user currently has presence.
func (h *Hub) Online(ctx context.Context, userID string) bool {
	status, err := h.rc.Get(ctx, statusKeyPrefix+userID)
	return err == nil && status == "online"
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.sio.Close(nil)
}

func (h *Hub) setPresence(userID, sid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.rc.Set(ctx, presenceKeyPrefix+userID, sid, 0); err != nil && h.logger != nil {
		h.logger.Warn("set presence failed", zap.String("user_id", userID), zap.Error(err))
	}
	if err := h.rc.Set(ctx, statusKeyPrefix+userID, "online", 0); err != nil && h.logger != nil {
		h.logger.Warn("set status failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (h *Hub) clearPresence(userID, sid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Only clear if presence still points at this connection.
	cur, err := h.rc.Get(ctx, presenceKeyPrefix+userID)
	if err != nil || (cur != "" && cur != sid) {
		return
	}
	if err := h.rc.Del(ctx, presenceKeyPrefix+userID, statusKeyPrefix+userID); err != nil && h.logger != nil {
		h.logger.Warn("clear presence failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func extractToken(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	if token := firstValueFromMultiMap(handshake.Query, "token"); token != "" {
		return normalizeToken(token)
	}
	if token := firstValueFromMultiMap(handshake.Headers, "authorization"); token != "" {
		return normalizeToken(token)
	}
	return ""
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	for k, list := range values {
		if strings.EqualFold(strings.TrimSpace(k), key) && len(list) > 0 {
			return list[0]
		}
	}
	return ""
}
