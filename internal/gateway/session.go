package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/internal/logging"
	"github.com/quietbay/chesscourt/pkg/courtdto"
)

const sendTimeout = 10 * time.Second

// session is one connected client. All writes go through send: command
// replies, court events and the CPU reply goroutine may race, and
// wsjson.Write is not safe for concurrent use on one connection.
type session struct {
	conn   *websocket.Conn
	player domain.Player

	writeMu sync.Mutex
}

func (s *session) send(frame courtdto.ServerFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return wsjson.Write(ctx, s.conn, frame)
}

// Hub tracks connected sessions by player identity. It is the command
// layer's Roster and Presenter.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*session)}
}

// add registers the session and returns any displaced session carrying the
// same player id, so the caller can close it.
func (h *Hub) add(s *session) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.sessions[s.player.ID]
	h.sessions[s.player.ID] = s
	return old
}

// remove drops the session unless a newer one already took its slot.
func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[s.player.ID] == s {
		delete(h.sessions, s.player.ID)
	}
}

// Lookup finds an online player by display name, case-insensitively.
func (h *Hub) Lookup(name string) (domain.Player, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return domain.Player{}, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		if strings.ToLower(s.player.Name) == want {
			return s.player, true
		}
	}
	return domain.Player{}, false
}

// Tell delivers one frame to one player. Disconnected players simply miss
// it; the live snapshot keeps the game safe regardless.
func (h *Hub) Tell(playerID string, frame courtdto.ServerFrame) {
	h.mu.RLock()
	s := h.sessions[playerID]
	h.mu.RUnlock()
	if s == nil {
		return
	}
	if err := s.send(frame); err != nil {
		logging.L().Debug("frame delivery failed",
			zap.String("player", playerID), zap.Error(err))
	}
}

func (h *Hub) online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
