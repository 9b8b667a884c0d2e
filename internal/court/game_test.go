package court

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/quietbay/chesscourt/internal/domain"
)

func mustStart(t *testing.T, b *Board, white, black domain.Player) *Game {
	t.Helper()
	g, err := b.StartGame(white, black)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return g
}

func mustMove(t *testing.T, g *Game, playerID, from, to string) MoveResult {
	t.Helper()
	res, err := g.Move(playerID, from, to)
	if err != nil {
		t.Fatalf("move %s%s: %v", from, to, err)
	}
	if !res.Legal {
		t.Fatalf("move %s%s rejected by rules", from, to)
	}
	return res
}

func TestStartGameLifecycle(t *testing.T) {
	_, b := newArena(t, Deps{})

	if b.HasGame() {
		t.Fatal("fresh board already has a game")
	}
	if _, err := b.Game(); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("idle Game() err = %v, want ErrNoActiveGame", err)
	}

	g := mustStart(t, b, alice, bob)
	if !b.HasGame() {
		t.Fatal("board has no game after start")
	}
	if g.Turn() != domain.White {
		t.Fatalf("turn = %s, want white", g.Turn())
	}
	if g.PromotionFor(domain.White) != domain.Queen || g.PromotionFor(domain.Black) != domain.Queen {
		t.Fatal("default promotions are not queen")
	}
	if !g.HasPlayer(alice.ID) || !g.HasPlayer(bob.ID) || g.HasPlayer(carol.ID) {
		t.Fatal("seat membership wrong")
	}

	// An occupied board refuses a second game and keeps the first.
	if _, err := b.StartGame(carol, alice); !errors.Is(err, ErrBoardOccupied) {
		t.Fatalf("second start err = %v, want ErrBoardOccupied", err)
	}
	cur, err := b.Game()
	if err != nil || cur != g {
		t.Fatalf("game replaced: %v, %v", cur, err)
	}
}

func TestStartGameConcurrent(t *testing.T) {
	_, b := newArena(t, Deps{})

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := b.StartGame(alice, bob)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins, busy := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrBoardOccupied):
			busy++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || busy != attempts-1 {
		t.Fatalf("wins = %d busy = %d, want exactly one winner", wins, busy)
	}
}

func TestMoveTurnAndSeatChecks(t *testing.T) {
	_, b := newArena(t, Deps{})
	g := mustStart(t, b, alice, bob)

	if _, err := g.Move(bob.ID, "e7", "e5"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out-of-turn err = %v, want ErrNotYourTurn", err)
	}
	if _, err := g.Move(carol.ID, "e2", "e4"); !errors.Is(err, ErrPlayerNotInGame) {
		t.Fatalf("stranger err = %v, want ErrPlayerNotInGame", err)
	}

	res := mustMove(t, g, alice.ID, "e2", "e4")
	if res.SAN != "e4" || res.Mover != domain.White || res.Turn != domain.Black {
		t.Fatalf("result = %+v", res)
	}

	if _, err := g.Move(alice.ID, "d2", "d4"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("double move err = %v, want ErrNotYourTurn", err)
	}
}

func TestIllegalMoveChangesNothing(t *testing.T) {
	_, b := newArena(t, Deps{})
	g := mustStart(t, b, alice, bob)
	mustMove(t, g, alice.ID, "e2", "e4")
	fen := g.FEN()

	// Black trying to move a white pawn, an empty square, and nonsense.
	for _, sq := range [][2]string{{"e4", "e5"}, {"a3", "a4"}, {"e7", "e4"}} {
		res, err := g.Move(bob.ID, sq[0], sq[1])
		if err != nil {
			t.Fatalf("move %v: %v", sq, err)
		}
		if res.Legal {
			t.Fatalf("move %v accepted", sq)
		}
	}
	if g.FEN() != fen {
		t.Fatal("illegal moves changed the position")
	}
	if g.Turn() != domain.Black {
		t.Fatalf("turn = %s, want black", g.Turn())
	}
}

func TestNextPromotionValidationAndUse(t *testing.T) {
	_, b := newArena(t, Deps{})
	g := mustStart(t, b, alice, bob)

	for _, bad := range []domain.PieceType{domain.Pawn, domain.King, domain.PieceType("camel"), ""} {
		if err := g.NextPromotion(alice.ID, bad); !errors.Is(err, ErrIllegalPromotion) {
			t.Fatalf("NextPromotion(%q) err = %v, want ErrIllegalPromotion", bad, err)
		}
	}
	if err := g.NextPromotion(carol.ID, domain.Rook); !errors.Is(err, ErrPlayerNotInGame) {
		t.Fatalf("stranger promotion err = %v, want ErrPlayerNotInGame", err)
	}

	if err := g.NextPromotion(alice.ID, domain.Knight); err != nil {
		t.Fatalf("set promotion: %v", err)
	}
	if g.PromotionFor(domain.White) != domain.Knight {
		t.Fatalf("promotion = %s, want knight", g.PromotionFor(domain.White))
	}

	// Walk white's g-pawn to the 8th rank and let the stored choice fire.
	line := [][3]string{
		{alice.ID, "h2", "h4"}, {bob.ID, "g7", "g5"},
		{alice.ID, "h4", "g5"}, {bob.ID, "g8", "f6"},
		{alice.ID, "g5", "g6"}, {bob.ID, "f6", "g8"},
		{alice.ID, "g6", "g7"}, {bob.ID, "g8", "f6"},
	}
	for _, mv := range line {
		mustMove(t, g, mv[0], mv[1], mv[2])
	}
	res := mustMove(t, g, alice.ID, "g7", "h8")
	if res.UCI != "g7h8n" || !strings.HasSuffix(res.SAN, "=N") {
		t.Fatalf("promotion move = %+v, want knight promotion", res)
	}
	// The choice persists for later promotions rather than reverting.
	if g.PromotionFor(domain.White) != domain.Knight {
		t.Fatalf("promotion after use = %s", g.PromotionFor(domain.White))
	}
}

func TestCheckmateDetachesGame(t *testing.T) {
	_, b := newArena(t, Deps{})
	g := mustStart(t, b, alice, bob)

	mustMove(t, g, alice.ID, "f2", "f3")
	mustMove(t, g, bob.ID, "e7", "e5")
	mustMove(t, g, alice.ID, "g2", "g4")
	res := mustMove(t, g, bob.ID, "d8", "h4")

	want := domain.Checkmate(domain.Black)
	if res.Outcome != want {
		t.Fatalf("outcome = %+v, want %+v", res.Outcome, want)
	}
	if g.Outcome() != want {
		t.Fatalf("game outcome = %+v, want %+v", g.Outcome(), want)
	}
	if b.HasGame() {
		t.Fatal("terminal game still attached to board")
	}
	if _, err := g.Move(alice.ID, "a2", "a3"); !errors.Is(err, ErrGameTerminal) {
		t.Fatalf("move after mate err = %v, want ErrGameTerminal", err)
	}
	if err := g.Reset(); !errors.Is(err, ErrGameTerminal) {
		t.Fatalf("reset after mate err = %v, want ErrGameTerminal", err)
	}
}

func TestForfeit(t *testing.T) {
	_, b := newArena(t, Deps{})
	g := mustStart(t, b, alice, bob)

	if err := g.Forfeit(domain.White); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if got := g.Outcome(); got != domain.Forfeit(domain.Black) {
		t.Fatalf("outcome = %+v, want black wins by forfeit", got)
	}
	if b.HasGame() {
		t.Fatal("board still occupied after forfeit")
	}
	if err := g.Forfeit(domain.Black); !errors.Is(err, ErrGameTerminal) {
		t.Fatalf("second forfeit err = %v, want ErrGameTerminal", err)
	}

	next := mustStart(t, b, alice, bob)
	if next == g {
		t.Fatal("board reused the finished game")
	}
}

func TestResetKeepsSeatsAndBoard(t *testing.T) {
	_, b := newArena(t, Deps{})
	g := mustStart(t, b, alice, bob)
	mustMove(t, g, alice.ID, "e2", "e4")
	if err := g.NextPromotion(alice.ID, domain.Rook); err != nil {
		t.Fatalf("set promotion: %v", err)
	}
	oldID := g.ID()

	if err := g.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !b.HasGame() {
		t.Fatal("reset emptied the board slot")
	}
	cur, err := b.Game()
	if err != nil || cur != g {
		t.Fatalf("reset replaced the game object: %v, %v", cur, err)
	}
	if g.Turn() != domain.White {
		t.Fatalf("turn = %s, want white", g.Turn())
	}
	if len(g.MovesUCI()) != 0 {
		t.Fatalf("history survived reset: %v", g.MovesUCI())
	}
	if g.PromotionFor(domain.White) != domain.Queen {
		t.Fatalf("promotion = %s, want queen", g.PromotionFor(domain.White))
	}
	if g.White() != alice || g.Black() != bob {
		t.Fatal("seats changed on reset")
	}
	if g.ID() == oldID {
		t.Fatal("reset kept the old game id")
	}
}

func TestCPUMoveScenario(t *testing.T) {
	provider := &scriptedProvider{moves: []string{"e7e5"}}
	_, b := newArena(t, Deps{CPU: provider})
	g := mustStart(t, b, alice, domain.CPUPlayer())
	ctx := context.Background()

	// White to move: polling the CPU does nothing.
	res, err := g.CPUMove(ctx)
	if err != nil {
		t.Fatalf("cpu poll: %v", err)
	}
	if res.Legal {
		t.Fatalf("cpu moved out of turn: %+v", res)
	}
	if g.Turn() != domain.White {
		t.Fatalf("turn = %s, want white", g.Turn())
	}

	mustMove(t, g, alice.ID, "e2", "e4")

	res, err = g.CPUMove(ctx)
	if err != nil {
		t.Fatalf("cpu move: %v", err)
	}
	if !res.Legal || res.UCI != "e7e5" || res.Mover != domain.Black {
		t.Fatalf("cpu result = %+v", res)
	}
	if g.Turn() != domain.White {
		t.Fatalf("turn after cpu reply = %s, want white", g.Turn())
	}
	if moves := g.MovesUCI(); len(moves) != 2 || moves[1] != "e7e5" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestCPUMoveErrors(t *testing.T) {
	ctx := context.Background()

	_, bare := newArena(t, Deps{})
	g := mustStart(t, bare, alice, domain.CPUPlayer())
	mustMove(t, g, alice.ID, "e2", "e4")
	if _, err := g.CPUMove(ctx); !errors.Is(err, ErrNoMoveProvider) {
		t.Fatalf("no provider err = %v, want ErrNoMoveProvider", err)
	}

	_, b2 := newArena(t, Deps{CPU: &scriptedProvider{err: errors.New("engine crashed")}})
	g2 := mustStart(t, b2, alice, domain.CPUPlayer())
	mustMove(t, g2, alice.ID, "e2", "e4")
	if _, err := g2.CPUMove(ctx); err == nil {
		t.Fatal("provider failure swallowed")
	}

	_, b3 := newArena(t, Deps{CPU: &scriptedProvider{moves: []string{"e2e4"}}})
	g3 := mustStart(t, b3, alice, domain.CPUPlayer())
	mustMove(t, g3, alice.ID, "e2", "e4")
	if _, err := g3.CPUMove(ctx); err == nil {
		t.Fatal("illegal engine move accepted")
	}
	if g3.Turn() != domain.Black {
		t.Fatalf("turn = %s, want black untouched", g3.Turn())
	}

	// Two human seats: CPU polling is always a no-op.
	_, b4 := newArena(t, Deps{CPU: &scriptedProvider{moves: []string{"e7e5"}}})
	g4 := mustStart(t, b4, alice, bob)
	if res, err := g4.CPUMove(ctx); err != nil || res.Legal {
		t.Fatalf("cpu on human game: %+v, %v", res, err)
	}
}

// gatedProvider blocks inside BestMove until released, so tests can mutate
// the game while the CPU is "thinking".
type gatedProvider struct {
	entered chan struct{}
	release chan struct{}
	move    string
	once    sync.Once
}

func (p *gatedProvider) BestMove(ctx context.Context, fen string, moves []string) (string, error) {
	p.once.Do(func() { close(p.entered) })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.release:
		return p.move, nil
	}
}

func TestCPUMoveDroppedWhenGameChangesUnderneath(t *testing.T) {
	provider := &gatedProvider{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		move:    "e7e5",
	}
	_, b := newArena(t, Deps{CPU: provider})
	g := mustStart(t, b, alice, domain.CPUPlayer())
	mustMove(t, g, alice.ID, "e2", "e4")

	type reply struct {
		res MoveResult
		err error
	}
	got := make(chan reply, 1)
	go func() {
		res, err := g.CPUMove(context.Background())
		got <- reply{res, err}
	}()

	<-provider.entered
	if err := g.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	close(provider.release)

	r := <-got
	if r.err != nil {
		t.Fatalf("stale cpu move errored: %v", r.err)
	}
	if r.res.Legal {
		t.Fatalf("stale cpu move applied: %+v", r.res)
	}
	if moves := g.MovesUCI(); len(moves) != 0 {
		t.Fatalf("reset game gained moves: %v", moves)
	}
}
