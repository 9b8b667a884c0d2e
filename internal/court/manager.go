// Package court coordinates chess games on named, physically placed boards.
// It guarantees one game per board, brokers time-boxed player-vs-player
// challenges, and keeps the turn/promotion/forfeit lifecycle consistent
// under interleaved commands and the background expiry sweep.
package court

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/internal/engine"
	"github.com/quietbay/chesscourt/internal/logging"
	"github.com/quietbay/chesscourt/internal/render"
	"github.com/quietbay/chesscourt/internal/rules"
)

// DefinitionSource loads persisted board definitions for Reload. Loaded
// definitions must carry unique names.
type DefinitionSource interface {
	LoadDefinitions() ([]domain.BoardDefinition, error)
}

// Deps are the manager's collaborators. Rules, Renderer and Clock fall back
// to working defaults; CPU and Source may stay nil when the deployment has
// no engine binary or no persisted boards.
type Deps struct {
	Rules    rules.Engine
	CPU      engine.MoveProvider
	Renderer render.Renderer
	Source   DefinitionSource
	Clock    func() time.Time
}

// Manager is the process-wide registry of boards plus the single shared
// challenge cache. Board names are case-sensitive and matched exactly.
type Manager struct {
	deps   *boardDeps
	source DefinitionSource

	mu     sync.RWMutex
	boards map[string]*Board

	cache *ChallengeCache
}

func NewManager(d Deps) *Manager {
	if d.Rules == nil {
		d.Rules = rules.NewEngine()
	}
	if d.Renderer == nil {
		d.Renderer = render.Nop{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Manager{
		deps: &boardDeps{
			rules:    d.Rules,
			cpu:      d.CPU,
			renderer: d.Renderer,
			clock:    d.Clock,
		},
		source: d.Source,
		boards: make(map[string]*Board),
		cache:  NewChallengeCache(d.Clock),
	}
}

// Board looks a board up by exact name.
func (m *Manager) Board(name string) (*Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[name]
	if !ok {
		return nil, ErrNoSuchBoard
	}
	return b, nil
}

// Boards returns a name-sorted snapshot of the registry.
func (m *Manager) Boards() []*Board {
	m.mu.RLock()
	out := make([]*Board, 0, len(m.boards))
	for _, b := range m.boards {
		out = append(out, b)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Definitions returns every board as a persistable definition, name-sorted.
func (m *Manager) Definitions() []domain.BoardDefinition {
	boards := m.Boards()
	out := make([]domain.BoardDefinition, 0, len(boards))
	for _, b := range boards {
		out = append(out, b.Definition())
	}
	return out
}

// CreateBoard registers a new idle board with default materials.
func (m *Manager) CreateBoard(name, world string, anchor domain.Vec3) (*Board, error) {
	if name == "" {
		return nil, fmt.Errorf("board name is required")
	}
	if world == "" {
		return nil, fmt.Errorf("board world is required")
	}
	def := domain.BoardDefinition{
		Name:      name,
		World:     world,
		Anchor:    anchor,
		Materials: domain.DefaultMaterials(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.boards[name]; exists {
		return nil, ErrDuplicateBoard
	}
	b := newBoard(def, m.deps)
	m.boards[name] = b
	return b, nil
}

// DeleteBoard unregisters the board. A live game is force-aborted first and
// returned so callers can tell its players; pending challenges for the board
// are dropped.
func (m *Manager) DeleteBoard(name string) (*Game, error) {
	m.mu.Lock()
	b, ok := m.boards[name]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNoSuchBoard
	}
	delete(m.boards, name)
	m.mu.Unlock()

	m.cache.invalidateBoard(b)
	g, err := b.Game()
	if err != nil || !g.abort() {
		return nil, nil
	}
	return g, nil
}

// Reload replaces the registry with the definitions the source currently
// holds. A board whose name, world and anchor are unchanged keeps its
// object and any live game; a moved or removed board has its game aborted.
// On a source error the registry stays exactly as it was.
func (m *Manager) Reload() error {
	if m.source == nil {
		return fmt.Errorf("no board definition source configured")
	}
	defs, err := m.source.LoadDefinitions()
	if err != nil {
		return fmt.Errorf("load board definitions: %w", err)
	}

	m.mu.Lock()
	next := make(map[string]*Board, len(defs))
	for _, def := range defs {
		if cur, ok := m.boards[def.Name]; ok && cur.sameIdentity(def) {
			cur.setMaterials(def.Materials)
			next[def.Name] = cur
			continue
		}
		next[def.Name] = newBoard(def, m.deps)
	}
	var dropped []*Board
	for _, b := range m.boards {
		if next[b.name] != b {
			dropped = append(dropped, b)
		}
	}
	m.boards = next
	m.mu.Unlock()

	for _, b := range dropped {
		b.abortGame()
		m.cache.invalidateBoard(b)
	}
	logging.L().Info("board registry reloaded",
		zap.Int("boards", len(defs)),
		zap.Int("dropped", len(dropped)))
	return nil
}

// Challenges exposes the shared challenge cache.
func (m *Manager) Challenges() *ChallengeCache {
	return m.cache
}

// CreateChallenge stores a pending challenge for the invitee. The board must
// be idle and not already named by another pending challenge.
func (m *Manager) CreateChallenge(boardName string, challenger, invitee domain.Player, color domain.Color) (Challenge, error) {
	if !color.Valid() {
		return Challenge{}, fmt.Errorf("invalid challenger color %q", color)
	}
	if !challenger.IsHuman() || !invitee.IsHuman() {
		return Challenge{}, fmt.Errorf("challenges are between human players")
	}
	if challenger.Equal(invitee) {
		return Challenge{}, ErrSelfChallenge
	}
	b, err := m.Board(boardName)
	if err != nil {
		return Challenge{}, err
	}
	if b.HasGame() {
		return Challenge{}, ErrBoardOccupied
	}
	if m.boardChallenged(b) {
		return Challenge{}, ErrBoardChallenged
	}

	ch := Challenge{
		Board:           b,
		Challenger:      challenger,
		Invitee:         invitee,
		ChallengerColor: color,
		CreatedAt:       m.deps.clock(),
	}
	m.cache.Put(invitee.ID, ch)
	return ch, nil
}

// AcceptChallenge consumes the invitee's pending challenge and starts the
// game. A swept, overwritten or stale-board challenge reads as expired.
func (m *Manager) AcceptChallenge(inviteeID string) (*Game, Challenge, error) {
	ch, ok := m.cache.Take(inviteeID)
	if !ok {
		return nil, Challenge{}, ErrChallengeExpired
	}

	m.mu.RLock()
	registered := m.boards[ch.Board.Name()] == ch.Board
	m.mu.RUnlock()
	if !registered {
		return nil, ch, ErrChallengeExpired
	}

	white, black := ch.Seats()
	g, err := ch.Board.StartGame(white, black)
	if err != nil {
		return nil, ch, err
	}
	return g, ch, nil
}

func (m *Manager) boardChallenged(b *Board) bool {
	for _, ch := range m.cache.Pending() {
		if ch.Board == b {
			return true
		}
	}
	return false
}

func (c *ChallengeCache) invalidateBoard(b *Board) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, ch := range c.entries {
		if ch.Board == b {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

func (b *Board) sameIdentity(def domain.BoardDefinition) bool {
	return b.name == def.Name && b.world == def.World && b.anchor == def.Anchor
}

// RunSweeper evicts expired challenges on a fixed cadence until ctx is
// cancelled. It only ever touches the challenge cache.
func (m *Manager) RunSweeper(ctx context.Context, initialDelay, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	logging.L().Info("challenge sweeper running",
		zap.Duration("initial_delay", initialDelay),
		zap.Duration("interval", interval))

	if initialDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(initialDelay):
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	m.sweepOnce()
	for {
		select {
		case <-ctx.Done():
			logging.L().Info("challenge sweeper stopped")
			return
		case <-ticker.C:
			m.sweepOnce()
		}
	}
}

func (m *Manager) sweepOnce() {
	if n := m.cache.CleanUp(); n > 0 {
		logging.L().Debug("expired challenges evicted", zap.Int("count", n))
	}
}

// Restore is a recorded live game to reinstall on a board, typically read
// back from the snapshot store at startup.
type Restore struct {
	Board      string
	White      domain.Player
	Black      domain.Player
	MovesUCI   []string
	Promotions map[domain.Color]domain.PieceType
	GameID     string
	StartedAt  time.Time
}

// RestoreGame replays the recorded moves and seats the players back on the
// board. Snapshots that replay to a finished position are rejected.
func (m *Manager) RestoreGame(r Restore) (*Game, error) {
	b, err := m.Board(r.Board)
	if err != nil {
		return nil, err
	}
	match, err := m.deps.rules.Replay(r.MovesUCI)
	if err != nil {
		return nil, fmt.Errorf("replay recorded moves: %w", err)
	}
	if match.Outcome().Terminal() {
		return nil, ErrGameTerminal
	}
	g, err := b.startGameFrom(match, r.White, r.Black)
	if err != nil {
		return nil, err
	}
	g.restoreMeta(r)
	return g, nil
}

func (g *Game) restoreMeta(r Restore) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r.GameID != "" {
		g.id = r.GameID
	}
	if !r.StartedAt.IsZero() {
		g.started = r.StartedAt
	}
	for color, piece := range r.Promotions {
		if color.Valid() && piece.ValidPromotion() {
			g.promotion[color] = piece
		}
	}
}
