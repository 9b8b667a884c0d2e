package court

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/internal/engine"
	"github.com/quietbay/chesscourt/internal/render"
	"github.com/quietbay/chesscourt/internal/rules"
)

// boardDeps are the collaborators every board shares. The manager owns one
// instance and hands it to each board it creates.
type boardDeps struct {
	rules    rules.Engine
	cpu      engine.MoveProvider
	renderer render.Renderer
	clock    func() time.Time
}

// Board is a named, physically anchored chess board. It owns at most one
// Game at a time; name, world and anchor never change after creation.
type Board struct {
	name   string
	world  string
	anchor domain.Vec3
	deps   *boardDeps

	mu        sync.Mutex
	materials domain.CheckerboardMaterials
	game      *Game
}

func newBoard(def domain.BoardDefinition, deps *boardDeps) *Board {
	return &Board{
		name:      def.Name,
		world:     def.World,
		anchor:    def.Anchor,
		materials: def.Materials,
		deps:      deps,
	}
}

func (b *Board) Name() string        { return b.name }
func (b *Board) World() string       { return b.world }
func (b *Board) Anchor() domain.Vec3 { return b.anchor }

func (b *Board) Materials() domain.CheckerboardMaterials {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.materials
}

// Definition returns the board as a persistable definition.
func (b *Board) Definition() domain.BoardDefinition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.BoardDefinition{
		Name:      b.name,
		World:     b.world,
		Anchor:    b.anchor,
		Materials: b.materials,
	}
}

func (b *Board) HasGame() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.game != nil
}

// Game returns the active game.
func (b *Board) Game() (*Game, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.game == nil {
		return nil, ErrNoActiveGame
	}
	return b.game, nil
}

// StartGame seats white and black on the board. The occupancy check and the
// slot assignment happen under one lock, so two simultaneous starts yield
// exactly one game.
func (b *Board) StartGame(white, black domain.Player) (*Game, error) {
	return b.startGameFrom(b.deps.rules.New(), white, black)
}

func (b *Board) startGameFrom(match rules.Match, white, black domain.Player) (*Game, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.game != nil {
		return nil, ErrBoardOccupied
	}
	g := newGame(b, match, white, black)
	b.game = g
	return g, nil
}

// clearGame empties the slot if it still holds g. A game that already
// detached cannot evict its successor.
func (b *Board) clearGame(g *Game) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.game == g {
		b.game = nil
	}
}

// abortGame force-terminates the active game, if any.
func (b *Board) abortGame() bool {
	b.mu.Lock()
	g := b.game
	b.mu.Unlock()
	if g == nil {
		return false
	}
	return g.abort()
}

// ApplyCheckerboard updates the board's presentation materials and asks the
// rendering collaborator to repaint. Game state is untouched.
func (b *Board) ApplyCheckerboard(ctx context.Context, black, white, border string) error {
	if black == "" || white == "" {
		return fmt.Errorf("black and white materials are required")
	}
	b.mu.Lock()
	b.materials = domain.CheckerboardMaterials{Black: black, White: white, Border: border}
	def := domain.BoardDefinition{
		Name:      b.name,
		World:     b.world,
		Anchor:    b.anchor,
		Materials: b.materials,
	}
	b.mu.Unlock()

	return b.deps.renderer.Checkerboard(ctx, def)
}

func (b *Board) setMaterials(m domain.CheckerboardMaterials) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.materials = m
}
