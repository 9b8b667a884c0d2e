package command

import (
	"errors"

	"github.com/quietbay/chesscourt/internal/archive"
	"github.com/quietbay/chesscourt/internal/court"
	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/pkg/courtdto"
)

func toDTOPlayer(p domain.Player) courtdto.Player {
	return courtdto.Player{Kind: string(p.Kind), ID: p.ID, Name: p.DisplayName()}
}

func toDTOOutcome(o domain.Outcome) courtdto.Outcome {
	return courtdto.Outcome{Method: string(o.Method), Winner: string(o.Winner)}
}

func toDTOState(st court.GameState) *courtdto.GameState {
	promos := make(map[string]string, len(st.Promotions))
	for color, piece := range st.Promotions {
		promos[string(color)] = string(piece)
	}
	return &courtdto.GameState{
		GameID:     st.ID,
		Board:      st.Board,
		White:      toDTOPlayer(st.White),
		Black:      toDTOPlayer(st.Black),
		Turn:       string(st.Turn),
		Outcome:    toDTOOutcome(st.Outcome),
		FEN:        st.FEN,
		MovesUCI:   append([]string(nil), st.MovesUCI...),
		MovesSAN:   append([]string(nil), st.MovesSAN...),
		PGN:        st.PGN,
		Promotions: promos,
		StartedAt:  st.StartedAt,
	}
}

func toDTOMove(res court.MoveResult, state *courtdto.GameState) *courtdto.MoveReport {
	return &courtdto.MoveReport{
		Legal:   res.Legal,
		Mover:   string(res.Mover),
		UCI:     res.UCI,
		SAN:     res.SAN,
		Check:   res.Check,
		Outcome: toDTOOutcome(res.Outcome),
		Turn:    string(res.Turn),
		State:   state,
	}
}

func toDTOBoard(b *court.Board, challenged bool) courtdto.BoardSummary {
	def := b.Definition()
	return courtdto.BoardSummary{
		Name:  def.Name,
		World: def.World,
		Anchor: courtdto.Vec3{
			X: def.Anchor.X,
			Y: def.Anchor.Y,
			Z: def.Anchor.Z,
		},
		Materials: courtdto.Materials{
			Black:  def.Materials.Black,
			White:  def.Materials.White,
			Border: def.Materials.Border,
		},
		InPlay:     b.HasGame(),
		Challenged: challenged,
	}
}

func toDTOArchived(rec archive.Record) courtdto.ArchivedGame {
	return courtdto.ArchivedGame{
		GameID:    rec.GameID,
		Board:     rec.Board,
		White:     rec.WhiteName,
		Black:     rec.BlackName,
		Result:    rec.Result,
		Method:    rec.Method,
		MovesSAN:  append([]string(nil), rec.MovesSAN...),
		PGN:       rec.PGN,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
	}
}

// CodeOf maps an orchestration failure to its wire error code.
func CodeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadMove):
		return courtdto.CodeBadRequest
	case errors.Is(err, court.ErrDuplicateBoard):
		return courtdto.CodeDuplicateBoard
	case errors.Is(err, court.ErrNoSuchBoard):
		return courtdto.CodeNoSuchBoard
	case errors.Is(err, court.ErrNoActiveGame):
		return courtdto.CodeNoActiveGame
	case errors.Is(err, court.ErrBoardOccupied):
		return courtdto.CodeBoardOccupied
	case errors.Is(err, court.ErrBoardChallenged):
		return courtdto.CodeBoardChallenged
	case errors.Is(err, court.ErrPlayerNotInGame):
		return courtdto.CodePlayerNotInGame
	case errors.Is(err, court.ErrIllegalPromotion):
		return courtdto.CodeIllegalPromotion
	case errors.Is(err, court.ErrSelfChallenge):
		return courtdto.CodeSelfChallenge
	case errors.Is(err, court.ErrChallengeExpired):
		return courtdto.CodeChallengeExpired
	case errors.Is(err, court.ErrGameTerminal):
		return courtdto.CodeGameOver
	case errors.Is(err, court.ErrNotYourTurn):
		return courtdto.CodeNotYourTurn
	case errors.Is(err, court.ErrNoMoveProvider):
		return courtdto.CodeNoMoveProvider
	}
	return courtdto.CodeInternal
}
