// Package archive persists finished matches. Aborted games are never
// archived; the caller decides what is worth recording via ResultOf.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quietbay/chesscourt/internal/domain"
)

// Record is one finished match.
type Record struct {
	GameID    string
	Board     string
	WhiteID   string
	WhiteName string
	BlackID   string
	BlackName string
	Result    string // "white", "black" or "draw"
	Method    string // "checkmate", "stalemate", "draw" or "forfeit"
	MovesUCI  []string
	MovesSAN  []string
	PGN       string
	StartedAt time.Time
	EndedAt   time.Time
}

// Store keeps finished matches.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// ResultOf maps a terminal outcome to its archive tokens. Outcomes that are
// not worth recording (in progress, aborted) return ok=false.
func ResultOf(o domain.Outcome) (result, method string, ok bool) {
	if !o.Recordable() {
		return "", "", false
	}
	switch o.Method {
	case domain.MethodCheckmate:
		return strings.ToLower(string(o.Winner)), "checkmate", true
	case domain.MethodStalemate:
		return "draw", "stalemate", true
	case domain.MethodDraw:
		return "draw", "draw", true
	case domain.MethodForfeit:
		return strings.ToLower(string(o.Winner)), "forfeit", true
	}
	return "", "", false
}

func mapResultToPGN(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

// BuildPGN renders the record as a headed PGN document.
func BuildPGN(rec Record) string {
	pgnResult := mapResultToPGN(rec.Result)
	date := rec.EndedAt
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	b.WriteString("[Event \"ChessCourt\"]\n")
	b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", sanitizePGN(rec.Board)))
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(rec.WhiteName)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(rec.BlackName)))
	if strings.TrimSpace(rec.Method) != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(rec.Method))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult))

	for i := 0; i < len(rec.MovesSAN); i += 2 {
		turn := (i / 2) + 1
		b.WriteString(fmt.Sprintf("%d. %s", turn, strings.TrimSpace(rec.MovesSAN[i])))
		if i+1 < len(rec.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(rec.MovesSAN[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
