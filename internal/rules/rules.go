// Package rules adapts a chess rules library behind the narrow surface the
// orchestration layer needs: apply a move, report the verdict, replay a
// recorded game. Nothing outside this package knows how legality is decided.
package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/quietbay/chesscourt/internal/domain"
)

// Verdict is the engine's answer to an attempted move. Legal=false means the
// position is unchanged; Outcome is set when the move ended the game.
type Verdict struct {
	Legal   bool
	UCI     string
	SAN     string
	Check   bool
	Outcome domain.Outcome
}

// Match tracks one game's legal state.
type Match interface {
	// Apply attempts the move from->to, consulting promotion only when the
	// move actually promotes a pawn.
	Apply(from, to string, promotion domain.PieceType) Verdict
	// ApplyUCI attempts a move in UCI form ("e2e4", "g7h8q").
	ApplyUCI(uci string) Verdict
	Turn() domain.Color
	FEN() string
	MovesUCI() []string
	MovesSAN() []string
	PGN() string
	Outcome() domain.Outcome
}

// Engine creates and replays matches.
type Engine interface {
	New() Match
	// Replay rebuilds a match from recorded UCI moves, failing on the first
	// move the rules reject.
	Replay(ucis []string) (Match, error)
}

func NewEngine() Engine { return stdEngine{} }

type stdEngine struct{}

func (stdEngine) New() Match {
	return &match{game: nchess.NewGame()}
}

func (stdEngine) Replay(ucis []string) (Match, error) {
	game := nchess.NewGame()
	for i, mv := range ucis {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %d (%s): %w", i+1, mv, err)
		}
	}
	return &match{game: game}, nil
}

type match struct {
	game *nchess.Game
}

func (m *match) Apply(from, to string, promotion domain.PieceType) Verdict {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	uci := from + to
	if m.promotes(from, to) {
		uci += promotion.PromoChar()
	}
	return m.ApplyUCI(uci)
}

func (m *match) ApplyUCI(uci string) Verdict {
	uci = strings.ToLower(strings.TrimSpace(uci))
	pos := m.game.Position()

	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return Verdict{}
	}
	if err := m.game.Move(mv, nil); err != nil {
		return Verdict{}
	}

	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	return Verdict{
		Legal:   true,
		UCI:     uci,
		SAN:     san,
		Check:   strings.HasSuffix(san, "+"),
		Outcome: m.Outcome(),
	}
}

// promotes reports whether from->to moves a pawn onto its last rank.
func (m *match) promotes(from, to string) bool {
	sq, ok := parseSquare(from)
	if !ok || len(to) != 2 {
		return false
	}
	piece := m.game.Position().Board().Piece(sq)
	if piece == nchess.NoPiece || piece.Type() != nchess.Pawn {
		return false
	}
	if piece.Color() == nchess.White {
		return to[1] == '8'
	}
	return to[1] == '1'
}

func (m *match) Turn() domain.Color {
	if m.game.Position().Turn() == nchess.White {
		return domain.White
	}
	return domain.Black
}

func (m *match) FEN() string {
	return m.game.FEN()
}

func (m *match) MovesUCI() []string {
	moves := m.game.Moves()
	out := make([]string, 0, len(moves))
	for _, mv := range moves {
		out = append(out, mv.String())
	}
	return out
}

func (m *match) MovesSAN() []string {
	positions := m.game.Positions()
	moves := m.game.Moves()
	out := make([]string, len(moves))
	notation := nchess.AlgebraicNotation{}
	for i, mv := range moves {
		if i < len(positions) {
			out[i] = notation.Encode(positions[i], mv)
		}
	}
	return out
}

func (m *match) PGN() string {
	return strings.TrimSpace(m.game.String())
}

func (m *match) Outcome() domain.Outcome {
	switch m.game.Outcome() {
	case nchess.WhiteWon:
		return domain.Checkmate(domain.White)
	case nchess.BlackWon:
		return domain.Checkmate(domain.Black)
	case nchess.Draw:
		if m.game.Method() == nchess.Stalemate {
			return domain.Stalemate()
		}
		return domain.Draw()
	}
	return domain.Outcome{}
}

func parseSquare(s string) (nchess.Square, bool) {
	if len(s) != 2 {
		return 0, false
	}
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(f-'a'), nchess.Rank(r-'1')), true
}
