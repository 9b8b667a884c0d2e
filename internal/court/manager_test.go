package court

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quietbay/chesscourt/internal/domain"
)

var (
	alice = domain.HumanPlayer("u-alice", "Alice")
	bob   = domain.HumanPlayer("u-bob", "Bob")
	carol = domain.HumanPlayer("u-carol", "Carol")
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedProvider deals out prepared CPU moves in order.
type scriptedProvider struct {
	mu    sync.Mutex
	moves []string
	err   error
}

func (p *scriptedProvider) BestMove(context.Context, string, []string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	if len(p.moves) == 0 {
		return "", errors.New("script exhausted")
	}
	mv := p.moves[0]
	p.moves = p.moves[1:]
	return mv, nil
}

type staticSource struct {
	mu   sync.Mutex
	defs []domain.BoardDefinition
	err  error
}

func (s *staticSource) LoadDefinitions() ([]domain.BoardDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.BoardDefinition(nil), s.defs...), nil
}

func (s *staticSource) set(defs []domain.BoardDefinition, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = defs
	s.err = err
}

func arenaDef() domain.BoardDefinition {
	return domain.BoardDefinition{
		Name:      "arena",
		World:     "overworld",
		Anchor:    domain.Vec3{X: 1, Y: 64, Z: 2},
		Materials: domain.DefaultMaterials(),
	}
}

func newArena(t *testing.T, d Deps) (*Manager, *Board) {
	t.Helper()
	m := NewManager(d)
	b, err := m.CreateBoard("arena", "overworld", domain.Vec3{X: 1, Y: 64, Z: 2})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	return m, b
}

func TestCreateBoardDuplicateAndCase(t *testing.T) {
	m, lower := newArena(t, Deps{})

	if _, err := m.CreateBoard("arena", "overworld", domain.Vec3{}); !errors.Is(err, ErrDuplicateBoard) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicateBoard", err)
	}

	// Names are case-sensitive: "Arena" is a different board.
	upper, err := m.CreateBoard("Arena", "overworld", domain.Vec3{X: 9})
	if err != nil {
		t.Fatalf("create Arena: %v", err)
	}
	if upper == lower {
		t.Fatal("case variants resolved to the same board")
	}

	got, err := m.Board("arena")
	if err != nil || got != lower {
		t.Fatalf("Board(arena) = %v, %v", got, err)
	}
	if _, err := m.Board("ARENA"); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("Board(ARENA) err = %v, want ErrNoSuchBoard", err)
	}

	boards := m.Boards()
	if len(boards) != 2 || boards[0].Name() != "Arena" || boards[1].Name() != "arena" {
		names := make([]string, 0, len(boards))
		for _, b := range boards {
			names = append(names, b.Name())
		}
		t.Fatalf("Boards() order = %v", names)
	}
}

func TestCreateBoardValidation(t *testing.T) {
	m := NewManager(Deps{})
	if _, err := m.CreateBoard("", "overworld", domain.Vec3{}); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := m.CreateBoard("arena", "", domain.Vec3{}); err == nil {
		t.Fatal("empty world accepted")
	}
}

func TestDeleteBoardAbortsGame(t *testing.T) {
	m, b := newArena(t, Deps{})
	g, err := b.StartGame(alice, bob)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	aborted, err := m.DeleteBoard("arena")
	if err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if aborted != g {
		t.Fatalf("aborted game = %v, want the live game", aborted)
	}
	if got := g.Outcome(); got != domain.Aborted() {
		t.Fatalf("outcome = %+v, want aborted", got)
	}
	if b.HasGame() {
		t.Fatal("deleted board still holds a game")
	}
	if _, err := m.Board("arena"); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("lookup after delete err = %v, want ErrNoSuchBoard", err)
	}

	if _, err := m.DeleteBoard("arena"); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("second delete err = %v, want ErrNoSuchBoard", err)
	}
}

func TestDeleteBoardDropsPendingChallenges(t *testing.T) {
	m, _ := newArena(t, Deps{})
	if _, err := m.CreateChallenge("arena", alice, bob, domain.White); err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	if _, err := m.DeleteBoard("arena"); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if n := m.Challenges().Len(); n != 0 {
		t.Fatalf("challenges after delete = %d, want 0", n)
	}
	if _, _, err := m.AcceptChallenge(bob.ID); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("accept err = %v, want ErrChallengeExpired", err)
	}
}

func TestCreateChallengeGuards(t *testing.T) {
	m, b := newArena(t, Deps{})

	if _, err := m.CreateChallenge("nowhere", alice, bob, domain.White); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("missing board err = %v", err)
	}
	if _, err := m.CreateChallenge("arena", alice, alice, domain.White); !errors.Is(err, ErrSelfChallenge) {
		t.Fatalf("self challenge err = %v", err)
	}
	if _, err := m.CreateChallenge("arena", alice, domain.CPUPlayer(), domain.White); err == nil {
		t.Fatal("CPU invitee accepted")
	}
	if _, err := m.CreateChallenge("arena", alice, bob, domain.Color("purple")); err == nil {
		t.Fatal("bogus color accepted")
	}

	if _, err := m.CreateChallenge("arena", alice, bob, domain.White); err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	// Board already spoken for by a pending challenge.
	if _, err := m.CreateChallenge("arena", carol, alice, domain.Black); !errors.Is(err, ErrBoardChallenged) {
		t.Fatalf("second challenge err = %v, want ErrBoardChallenged", err)
	}

	m.Challenges().Invalidate(bob.ID)
	if _, err := b.StartGame(alice, bob); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.CreateChallenge("arena", carol, alice, domain.Black); !errors.Is(err, ErrBoardOccupied) {
		t.Fatalf("occupied board err = %v, want ErrBoardOccupied", err)
	}
}

func TestAcceptChallengeSeatsAndConsumes(t *testing.T) {
	m, b := newArena(t, Deps{})

	ch, err := m.CreateChallenge("arena", alice, bob, domain.Black)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if ch.Board != b {
		t.Fatal("challenge references the wrong board")
	}

	g, got, err := m.AcceptChallenge(bob.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Challenger != alice {
		t.Fatalf("challenger = %+v", got.Challenger)
	}
	// Challenger picked black, so the invitee sits white.
	if g.White() != bob || g.Black() != alice {
		t.Fatalf("seats = %+v vs %+v", g.White(), g.Black())
	}
	if g.Turn() != domain.White {
		t.Fatalf("turn = %s, want white", g.Turn())
	}

	if _, _, err := m.AcceptChallenge(bob.ID); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("second accept err = %v, want ErrChallengeExpired", err)
	}
}

func TestAcceptChallengeExpiredBySweep(t *testing.T) {
	clock := newFakeClock()
	m, _ := newArena(t, Deps{Clock: clock.Now})

	if _, err := m.CreateChallenge("arena", alice, bob, domain.White); err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	clock.Advance(31 * time.Second)
	if n := m.Challenges().CleanUp(); n != 1 {
		t.Fatalf("cleanup evicted %d, want 1", n)
	}
	if _, ok := m.Challenges().GetIfPresent(bob.ID); ok {
		t.Fatal("swept challenge still visible")
	}
	if _, _, err := m.AcceptChallenge(bob.ID); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("accept err = %v, want ErrChallengeExpired", err)
	}
}

func TestAcceptChallengeStaleBoard(t *testing.T) {
	m, _ := newArena(t, Deps{})

	// A challenge that references a board no longer in the registry reads
	// as expired even if the entry itself survived.
	ghost := newBoard(domain.BoardDefinition{Name: "ghost", World: "overworld"}, m.deps)
	m.Challenges().Put(bob.ID, Challenge{
		Board:           ghost,
		Challenger:      alice,
		Invitee:         bob,
		ChallengerColor: domain.White,
		CreatedAt:       time.Now(),
	})

	if _, _, err := m.AcceptChallenge(bob.ID); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("accept err = %v, want ErrChallengeExpired", err)
	}
}

func TestReloadPreservesUnchangedBoards(t *testing.T) {
	src := &staticSource{}
	src.set([]domain.BoardDefinition{
		arenaDef(),
		{Name: "annex", World: "overworld", Anchor: domain.Vec3{X: 5, Y: 70, Z: 5}, Materials: domain.DefaultMaterials()},
	}, nil)

	m := NewManager(Deps{Source: src})
	if err := m.Reload(); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	arena, err := m.Board("arena")
	if err != nil {
		t.Fatalf("arena missing after reload: %v", err)
	}
	g, err := arena.StartGame(alice, bob)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	// Unchanged identity: same board object, game survives, materials
	// track the file.
	defs, _ := src.LoadDefinitions()
	defs[0].Materials = domain.CheckerboardMaterials{Black: "obsidian", White: "quartz_block"}
	src.set(defs, nil)
	if err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	again, _ := m.Board("arena")
	if again != arena {
		t.Fatal("unchanged board was recreated")
	}
	cur, err := arena.Game()
	if err != nil || cur != g {
		t.Fatalf("game lost on reload: %v, %v", cur, err)
	}
	if arena.Materials().Black != "obsidian" {
		t.Fatalf("materials not adopted: %+v", arena.Materials())
	}
}

func TestReloadMovedBoardAbortsGame(t *testing.T) {
	src := &staticSource{}
	src.set([]domain.BoardDefinition{arenaDef()}, nil)

	m := NewManager(Deps{Source: src})
	if err := m.Reload(); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	arena, _ := m.Board("arena")
	g, err := arena.StartGame(alice, bob)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	moved := arenaDef()
	moved.Anchor = domain.Vec3{X: 100, Y: 64, Z: 100}
	src.set([]domain.BoardDefinition{moved}, nil)
	if err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	fresh, err := m.Board("arena")
	if err != nil {
		t.Fatalf("moved board missing: %v", err)
	}
	if fresh == arena {
		t.Fatal("moved board kept its old object")
	}
	if fresh.HasGame() {
		t.Fatal("moved board inherited a game")
	}
	if g.Outcome() != domain.Aborted() {
		t.Fatalf("old game outcome = %+v, want aborted", g.Outcome())
	}
}

func TestReloadRemovedBoardAbortsGame(t *testing.T) {
	src := &staticSource{}
	src.set([]domain.BoardDefinition{arenaDef()}, nil)

	m := NewManager(Deps{Source: src})
	if err := m.Reload(); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	arena, _ := m.Board("arena")
	g, err := arena.StartGame(alice, bob)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	src.set(nil, nil)
	if err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := m.Board("arena"); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("removed board lookup err = %v", err)
	}
	if g.Outcome() != domain.Aborted() {
		t.Fatalf("outcome = %+v, want aborted", g.Outcome())
	}
}

func TestReloadFailureKeepsRegistry(t *testing.T) {
	src := &staticSource{}
	src.set([]domain.BoardDefinition{arenaDef()}, nil)

	m := NewManager(Deps{Source: src})
	if err := m.Reload(); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	arena, _ := m.Board("arena")
	g, err := arena.StartGame(alice, bob)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	src.set(nil, errors.New("disk on fire"))
	if err := m.Reload(); err == nil {
		t.Fatal("reload swallowed the source error")
	}

	kept, err := m.Board("arena")
	if err != nil || kept != arena {
		t.Fatalf("registry changed on failed reload: %v, %v", kept, err)
	}
	if got, err := arena.Game(); err != nil || got != g {
		t.Fatalf("game lost on failed reload: %v, %v", got, err)
	}

	noSrc := NewManager(Deps{})
	if err := noSrc.Reload(); err == nil {
		t.Fatal("reload without a source should fail")
	}
}

func TestRestoreGame(t *testing.T) {
	m, b := newArena(t, Deps{})
	started := time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)

	g, err := m.RestoreGame(Restore{
		Board:      "arena",
		White:      alice,
		Black:      domain.CPUPlayer(),
		MovesUCI:   []string{"e2e4", "e7e5"},
		Promotions: map[domain.Color]domain.PieceType{domain.White: domain.Rook},
		GameID:     "game-1",
		StartedAt:  started,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !b.HasGame() {
		t.Fatal("restore did not seat the game")
	}
	if g.Turn() != domain.White {
		t.Fatalf("turn = %s, want white", g.Turn())
	}
	if got := g.MovesUCI(); len(got) != 2 || got[1] != "e7e5" {
		t.Fatalf("moves = %v", got)
	}
	if g.PromotionFor(domain.White) != domain.Rook {
		t.Fatalf("promotion = %s, want rook", g.PromotionFor(domain.White))
	}
	if g.ID() != "game-1" || !g.StartedAt().Equal(started) {
		t.Fatalf("meta not restored: id=%s started=%s", g.ID(), g.StartedAt())
	}

	if _, err := m.RestoreGame(Restore{Board: "arena", White: alice, Black: bob}); !errors.Is(err, ErrBoardOccupied) {
		t.Fatalf("restore onto occupied err = %v", err)
	}
	if _, err := m.RestoreGame(Restore{Board: "nowhere", White: alice, Black: bob}); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("restore missing board err = %v", err)
	}
}

func TestRestoreGameRejectsBadSnapshots(t *testing.T) {
	m, _ := newArena(t, Deps{})

	if _, err := m.RestoreGame(Restore{Board: "arena", White: alice, Black: bob, MovesUCI: []string{"zz"}}); err == nil {
		t.Fatal("garbage moves accepted")
	}
	finished := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	if _, err := m.RestoreGame(Restore{Board: "arena", White: alice, Black: bob, MovesUCI: finished}); !errors.Is(err, ErrGameTerminal) {
		t.Fatalf("terminal snapshot err = %v, want ErrGameTerminal", err)
	}
}

func TestRunSweeperEvictsAndStops(t *testing.T) {
	clock := newFakeClock()
	m, _ := newArena(t, Deps{Clock: clock.Now})

	if _, err := m.CreateChallenge("arena", alice, bob, domain.White); err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	clock.Advance(31 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, 0, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for m.Challenges().Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never evicted the expired challenge")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
