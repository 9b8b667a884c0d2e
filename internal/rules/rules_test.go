package rules

import (
	"strings"
	"testing"

	"github.com/quietbay/chesscourt/internal/domain"
)

func mustApply(t *testing.T, m Match, uci string) Verdict {
	t.Helper()
	v := m.ApplyUCI(uci)
	if !v.Legal {
		t.Fatalf("move %s rejected", uci)
	}
	return v
}

func TestNewMatchStartingState(t *testing.T) {
	m := NewEngine().New()

	if got := m.Turn(); got != domain.White {
		t.Fatalf("turn = %s, want white", got)
	}
	if m.Outcome().Terminal() {
		t.Fatalf("fresh match already terminal: %+v", m.Outcome())
	}
	if moves := m.MovesUCI(); len(moves) != 0 {
		t.Fatalf("fresh match has moves: %v", moves)
	}
	if fen := m.FEN(); !strings.HasPrefix(fen, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("unexpected starting FEN %q", fen)
	}
}

func TestApplyLegalMove(t *testing.T) {
	m := NewEngine().New()

	v := m.Apply("e2", "e4", domain.Queen)
	if !v.Legal {
		t.Fatal("e2e4 rejected")
	}
	if v.UCI != "e2e4" {
		t.Fatalf("uci = %q, want e2e4", v.UCI)
	}
	if v.SAN != "e4" {
		t.Fatalf("san = %q, want e4", v.SAN)
	}
	if v.Check {
		t.Fatal("e4 flagged as check")
	}
	if v.Outcome.Terminal() {
		t.Fatalf("e4 flagged terminal: %+v", v.Outcome)
	}
	if got := m.Turn(); got != domain.Black {
		t.Fatalf("turn after e4 = %s, want black", got)
	}
	if moves := m.MovesUCI(); len(moves) != 1 || moves[0] != "e2e4" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestApplyIllegalMoveLeavesMatchUntouched(t *testing.T) {
	m := NewEngine().New()
	before := m.FEN()

	for _, uci := range []string{"e2e5", "e7e5", "a1a4", "e2", "zz99", ""} {
		v := m.ApplyUCI(uci)
		if v.Legal {
			t.Fatalf("move %q accepted", uci)
		}
	}
	if m.FEN() != before {
		t.Fatalf("position changed by rejected moves: %s", m.FEN())
	}
	if got := m.Turn(); got != domain.White {
		t.Fatalf("turn = %s, want white", got)
	}
}

func TestApplyCheckFlag(t *testing.T) {
	m := NewEngine().New()
	for _, uci := range []string{"e2e4", "e7e5", "d1h5", "g7g6"} {
		mustApply(t, m, uci)
	}

	v := mustApply(t, m, "h5e5")
	if v.SAN != "Qxe5+" {
		t.Fatalf("san = %q, want Qxe5+", v.SAN)
	}
	if !v.Check {
		t.Fatal("Qxe5+ not flagged as check")
	}
	if v.Outcome.Terminal() {
		t.Fatalf("Qxe5+ flagged terminal: %+v", v.Outcome)
	}
}

func TestApplyPromotion(t *testing.T) {
	m := NewEngine().New()
	for _, uci := range []string{"h2h4", "g7g5", "h4g5", "g8f6", "g5g6", "f6g8", "g6g7", "g8f6"} {
		mustApply(t, m, uci)
	}

	v := m.Apply("g7", "h8", domain.Rook)
	if !v.Legal {
		t.Fatal("promotion capture rejected")
	}
	if v.UCI != "g7h8r" {
		t.Fatalf("uci = %q, want g7h8r", v.UCI)
	}
	if v.SAN != "gxh8=R" {
		t.Fatalf("san = %q, want gxh8=R", v.SAN)
	}
	moves := m.MovesUCI()
	if moves[len(moves)-1] != "g7h8r" {
		t.Fatalf("last move = %q, want g7h8r", moves[len(moves)-1])
	}
}

func TestPromotionIgnoredForOrdinaryMoves(t *testing.T) {
	m := NewEngine().New()

	v := m.Apply("e2", "e4", domain.Knight)
	if !v.Legal || v.UCI != "e2e4" {
		t.Fatalf("verdict = %+v, want plain e2e4", v)
	}
}

func TestCheckmateOutcome(t *testing.T) {
	m := NewEngine().New()
	for _, uci := range []string{"f2f3", "e7e5", "g2g4"} {
		mustApply(t, m, uci)
	}

	v := mustApply(t, m, "d8h4")
	if v.SAN != "Qh4#" {
		t.Fatalf("san = %q, want Qh4#", v.SAN)
	}
	wantSAN := []string{"f3", "e5", "g4", "Qh4#"}
	gotSAN := m.MovesSAN()
	if len(gotSAN) != len(wantSAN) {
		t.Fatalf("san history = %v", gotSAN)
	}
	for i := range wantSAN {
		if gotSAN[i] != wantSAN[i] {
			t.Fatalf("san[%d] = %q, want %q", i, gotSAN[i], wantSAN[i])
		}
	}
	want := domain.Checkmate(domain.Black)
	if v.Outcome != want {
		t.Fatalf("verdict outcome = %+v, want %+v", v.Outcome, want)
	}
	if m.Outcome() != want {
		t.Fatalf("match outcome = %+v, want %+v", m.Outcome(), want)
	}

	if after := m.ApplyUCI("a2a3"); after.Legal {
		t.Fatal("move accepted after checkmate")
	}
}

func TestStalemateOutcome(t *testing.T) {
	line := []string{
		"e2e3", "a7a5",
		"d1h5", "a8a6",
		"h5a5", "h7h5",
		"a5c7", "a6h6",
		"h2h4", "f7f6",
		"c7d7", "e8f7",
		"d7b7", "d8d3",
		"b7b8", "d3h7",
		"b8c8", "f7g6",
	}
	m := NewEngine().New()
	for _, uci := range line {
		mustApply(t, m, uci)
	}

	v := mustApply(t, m, "c8e6")
	want := domain.Stalemate()
	if v.Outcome != want {
		t.Fatalf("verdict outcome = %+v, want stalemate", v.Outcome)
	}
	if m.Outcome() != want {
		t.Fatalf("match outcome = %+v, want stalemate", m.Outcome())
	}
}

func TestReplay(t *testing.T) {
	eng := NewEngine()

	m, err := eng.Replay([]string{"f2f3", "e7e5", "g2g4"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := m.Turn(); got != domain.Black {
		t.Fatalf("turn after replay = %s, want black", got)
	}

	v := mustApply(t, m, "d8h4")
	if v.Outcome != domain.Checkmate(domain.Black) {
		t.Fatalf("outcome = %+v, want black checkmate", v.Outcome)
	}

	if _, err := eng.Replay([]string{"e2e4", "e2e4"}); err == nil {
		t.Fatal("replay accepted an illegal continuation")
	}
	if _, err := eng.Replay([]string{"nonsense"}); err == nil {
		t.Fatal("replay accepted garbage")
	}
}
