package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/quietbay/chesscourt/internal/domain"
)

func foolsMateRecord() Record {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Record{
		GameID:    "game-1",
		Board:     "arena",
		WhiteID:   "u-alice",
		WhiteName: "Alice",
		BlackID:   "u-bob",
		BlackName: "Bob",
		Result:    "black",
		Method:    "checkmate",
		MovesUCI:  []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		MovesSAN:  []string{"f3", "e5", "g4", "Qh4#"},
		StartedAt: started,
		EndedAt:   started.Add(90 * time.Second),
	}
}

func TestResultOf(t *testing.T) {
	cases := []struct {
		outcome domain.Outcome
		result  string
		method  string
		ok      bool
	}{
		{domain.Checkmate(domain.White), "white", "checkmate", true},
		{domain.Checkmate(domain.Black), "black", "checkmate", true},
		{domain.Stalemate(), "draw", "stalemate", true},
		{domain.Draw(), "draw", "draw", true},
		{domain.Forfeit(domain.White), "white", "forfeit", true},
		{domain.Aborted(), "", "", false},
		{domain.Outcome{}, "", "", false},
	}
	for _, tc := range cases {
		result, method, ok := ResultOf(tc.outcome)
		if result != tc.result || method != tc.method || ok != tc.ok {
			t.Fatalf("ResultOf(%+v) = %q, %q, %v", tc.outcome, result, method, ok)
		}
	}
}

func TestBuildPGN(t *testing.T) {
	rec := foolsMateRecord()
	pgn := BuildPGN(rec)

	for _, want := range []string{
		`[Event "ChessCourt"]`,
		`[Site "arena"]`,
		`[Date "2025.06.01"]`,
		`[White "Alice"]`,
		`[Black "Bob"]`,
		`[Termination "checkmate"]`,
		`[Result "0-1"]`,
		"1. f3 e5 2. g4 Qh4# 0-1",
	} {
		if !strings.Contains(pgn, want) {
			t.Fatalf("pgn missing %q:\n%s", want, pgn)
		}
	}
}

func TestBuildPGNEscapesNames(t *testing.T) {
	rec := foolsMateRecord()
	rec.WhiteName = `Ali"ce`
	pgn := BuildPGN(rec)
	if strings.Contains(pgn, `"Ali"ce"`) {
		t.Fatalf("quote not escaped:\n%s", pgn)
	}
	if !strings.Contains(pgn, `[White "Ali'ce"]`) {
		t.Fatalf("pgn = %s", pgn)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	first := foolsMateRecord()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := foolsMateRecord()
	second.GameID = "game-2"
	second.Result = "white"
	second.EndedAt = first.EndedAt.Add(time.Hour)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].GameID != "game-2" {
		t.Fatalf("recent = %+v, want game-2 first", recent)
	}

	if got, _ := store.Recent(ctx, 1); len(got) != 1 || got[0].GameID != "game-2" {
		t.Fatalf("limited recent = %+v", got)
	}

	// Saving the same game id again replaces the record.
	first.Result = "draw"
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("resave: %v", err)
	}
	recent, _ = store.Recent(ctx, 10)
	if len(recent) != 2 {
		t.Fatalf("upsert duplicated records: %+v", recent)
	}
	for _, rec := range recent {
		if rec.GameID == "game-1" && rec.Result != "draw" {
			t.Fatalf("record not replaced: %+v", rec)
		}
	}
}
