package court

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/internal/rules"
)

// MoveResult reports what a move attempt did. Legal=false with a nil error
// means the rules rejected the move and nothing changed; for CPUMove it also
// covers "not the CPU's turn".
type MoveResult struct {
	Legal   bool
	Mover   domain.Color
	UCI     string
	SAN     string
	Check   bool
	Outcome domain.Outcome
	Turn    domain.Color
}

// GameState is a consistent snapshot of a game, safe to hand to persistence
// and rendering without holding the game's lock.
type GameState struct {
	ID         string
	Board      string
	White      domain.Player
	Black      domain.Player
	Turn       domain.Color
	Outcome    domain.Outcome
	FEN        string
	MovesUCI   []string
	MovesSAN   []string
	PGN        string
	Promotions map[domain.Color]domain.PieceType
	StartedAt  time.Time
}

// Game is the per-board turn/promotion/outcome state machine. A terminal
// outcome detaches the game from its board; the detached value stays
// readable as history but refuses further mutation.
type Game struct {
	board *Board
	white domain.Player
	black domain.Player

	mu        sync.Mutex
	id        string
	started   time.Time
	match     rules.Match
	promotion map[domain.Color]domain.PieceType
	outcome   domain.Outcome
	// gen counts mutations; a CPU move computed off-lock is dropped when
	// the generation moved underneath it.
	gen uint64
}

func newGame(b *Board, match rules.Match, white, black domain.Player) *Game {
	return &Game{
		board:     b,
		white:     white,
		black:     black,
		id:        uuid.NewString(),
		started:   b.deps.clock(),
		match:     match,
		promotion: defaultPromotions(),
	}
}

func defaultPromotions() map[domain.Color]domain.PieceType {
	return map[domain.Color]domain.PieceType{
		domain.White: domain.Queen,
		domain.Black: domain.Queen,
	}
}

func (g *Game) ID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *Game) Board() *Board        { return g.board }
func (g *Game) BoardName() string    { return g.board.Name() }
func (g *Game) White() domain.Player { return g.white }
func (g *Game) Black() domain.Player { return g.black }

func (g *Game) StartedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

func (g *Game) Turn() domain.Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.Turn()
}

func (g *Game) Outcome() domain.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.FEN()
}

func (g *Game) MovesUCI() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.MovesUCI()
}

func (g *Game) PGN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.PGN()
}

// HasPlayer reports whether the identity is seated at either side. The CPU
// never matches an identity.
func (g *Game) HasPlayer(playerID string) bool {
	return g.white.Is(playerID) || g.black.Is(playerID)
}

// Color returns the side the identity plays.
func (g *Game) Color(playerID string) (domain.Color, error) {
	return g.colorOf(playerID)
}

func (g *Game) colorOf(playerID string) (domain.Color, error) {
	switch {
	case g.white.Is(playerID):
		return domain.White, nil
	case g.black.Is(playerID):
		return domain.Black, nil
	}
	return "", ErrPlayerNotInGame
}

// PlayerFor returns the player seated on the given side.
func (g *Game) PlayerFor(color domain.Color) domain.Player {
	if color == domain.Black {
		return g.black
	}
	return g.white
}

func (g *Game) PromotionFor(color domain.Color) domain.PieceType {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.promotion[color]
}

// State captures a consistent snapshot of the whole game.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	promos := make(map[domain.Color]domain.PieceType, len(g.promotion))
	for c, p := range g.promotion {
		promos[c] = p
	}
	return GameState{
		ID:         g.id,
		Board:      g.board.Name(),
		White:      g.white,
		Black:      g.black,
		Turn:       g.match.Turn(),
		Outcome:    g.outcome,
		FEN:        g.match.FEN(),
		MovesUCI:   g.match.MovesUCI(),
		MovesSAN:   g.match.MovesSAN(),
		PGN:        g.match.PGN(),
		Promotions: promos,
		StartedAt:  g.started,
	}
}

// NextPromotion records which piece the player's future promoting moves
// produce. The choice sticks until changed again. Terminal games accept the
// call but ignore it.
func (g *Game) NextPromotion(playerID string, piece domain.PieceType) error {
	if !piece.ValidPromotion() {
		return ErrIllegalPromotion
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	color, err := g.colorOf(playerID)
	if err != nil {
		return err
	}
	if g.outcome.Terminal() {
		return nil
	}
	g.promotion[color] = piece
	return nil
}

// Move plays from->to for the given player. An illegal move returns
// Legal=false with a nil error and leaves the game untouched.
func (g *Game) Move(playerID, from, to string) (MoveResult, error) {
	g.mu.Lock()
	if g.outcome.Terminal() {
		g.mu.Unlock()
		return MoveResult{}, ErrGameTerminal
	}
	mover, err := g.colorOf(playerID)
	if err != nil {
		g.mu.Unlock()
		return MoveResult{}, err
	}
	if g.match.Turn() != mover {
		g.mu.Unlock()
		return MoveResult{}, ErrNotYourTurn
	}

	verdict := g.match.Apply(from, to, g.promotion[mover])
	if !verdict.Legal {
		g.mu.Unlock()
		return MoveResult{Mover: mover, Turn: mover}, nil
	}
	g.gen++
	res := g.settleLocked(mover, verdict)
	g.mu.Unlock()

	if res.Outcome.Terminal() {
		g.board.clearGame(g)
	}
	return res, nil
}

// CPUMove asks the move provider for the CPU's reply and applies it. When it
// is not the CPU's turn, or the game changed while the provider was
// thinking, the call is a silent no-op so callers may poll freely.
func (g *Game) CPUMove(ctx context.Context) (MoveResult, error) {
	g.mu.Lock()
	if g.outcome.Terminal() {
		g.mu.Unlock()
		return MoveResult{}, nil
	}
	cpuColor, ok := g.cpuColorLocked()
	if !ok || g.match.Turn() != cpuColor {
		g.mu.Unlock()
		return MoveResult{}, nil
	}
	provider := g.board.deps.cpu
	if provider == nil {
		g.mu.Unlock()
		return MoveResult{}, ErrNoMoveProvider
	}
	moves := g.match.MovesUCI()
	gen := g.gen
	g.mu.Unlock()

	// The provider may take its full move time; never hold the lock here.
	uci, err := provider.BestMove(ctx, "", moves)
	if err != nil {
		return MoveResult{}, fmt.Errorf("cpu move: %w", err)
	}

	g.mu.Lock()
	if g.outcome.Terminal() || g.gen != gen || g.match.Turn() != cpuColor {
		g.mu.Unlock()
		return MoveResult{}, nil
	}
	verdict := g.match.ApplyUCI(uci)
	if !verdict.Legal {
		g.mu.Unlock()
		return MoveResult{}, fmt.Errorf("cpu move %q rejected by rules", uci)
	}
	g.gen++
	res := g.settleLocked(cpuColor, verdict)
	g.mu.Unlock()

	if res.Outcome.Terminal() {
		g.board.clearGame(g)
	}
	return res, nil
}

func (g *Game) cpuColorLocked() (domain.Color, bool) {
	switch {
	case g.white.IsCPU():
		return domain.White, true
	case g.black.IsCPU():
		return domain.Black, true
	}
	return "", false
}

func (g *Game) settleLocked(mover domain.Color, v rules.Verdict) MoveResult {
	if v.Outcome.Terminal() {
		g.outcome = v.Outcome
	}
	return MoveResult{
		Legal:   true,
		Mover:   mover,
		UCI:     v.UCI,
		SAN:     v.SAN,
		Check:   v.Check,
		Outcome: v.Outcome,
		Turn:    g.match.Turn(),
	}
}

// Forfeit ends the game in favor of the other side and frees the board.
func (g *Game) Forfeit(color domain.Color) error {
	if !color.Valid() {
		return ErrPlayerNotInGame
	}
	g.mu.Lock()
	if g.outcome.Terminal() {
		g.mu.Unlock()
		return ErrGameTerminal
	}
	g.outcome = domain.Forfeit(color.Other())
	g.gen++
	g.mu.Unlock()

	g.board.clearGame(g)
	return nil
}

// Reset restarts the game in place: same seats, same board, fresh position
// with white to move, promotion choices back to queen.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outcome.Terminal() {
		return ErrGameTerminal
	}
	g.match = g.board.deps.rules.New()
	g.promotion = defaultPromotions()
	g.id = uuid.NewString()
	g.started = g.board.deps.clock()
	g.gen++
	return nil
}

// abort force-terminates a live game, used when its board is deleted or
// reloaded away. Reports whether the game was still live.
func (g *Game) abort() bool {
	g.mu.Lock()
	if g.outcome.Terminal() {
		g.mu.Unlock()
		return false
	}
	g.outcome = domain.Aborted()
	g.gen++
	g.mu.Unlock()

	g.board.clearGame(g)
	return true
}
