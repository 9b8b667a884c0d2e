package courtdto

// Error codes carried on DomainError and on gateway error frames.
const (
	CodeBadRequest       = "bad_request"
	CodeDuplicateBoard   = "duplicate_board"
	CodeNoSuchBoard      = "no_such_board"
	CodeNoActiveGame     = "no_active_game"
	CodeBoardOccupied    = "board_occupied"
	CodeBoardChallenged  = "board_challenged"
	CodePlayerNotInGame  = "player_not_in_game"
	CodeIllegalPromotion = "illegal_promotion"
	CodeSelfChallenge    = "self_challenge"
	CodeChallengeExpired = "challenge_expired"
	CodeGameOver         = "game_over"
	CodeNotYourTurn      = "not_your_turn"
	CodeNoMoveProvider   = "no_move_provider"
	CodeInternal         = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "court error"
}
