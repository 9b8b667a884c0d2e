package court

import "errors"

// Every failure the orchestration layer reports is one of these sentinel
// values. They are recoverable conditions for the front end to phrase, never
// process-fatal. An illegal chess move is not on this list on purpose: the
// rules verdict is ordinary data carried in MoveResult.
var (
	ErrDuplicateBoard   = errors.New("board name already registered")
	ErrNoSuchBoard      = errors.New("no such board")
	ErrNoActiveGame     = errors.New("board has no active game")
	ErrBoardOccupied    = errors.New("board already hosts a game")
	ErrBoardChallenged  = errors.New("board already has a pending challenge")
	ErrPlayerNotInGame  = errors.New("player is not seated in this game")
	ErrIllegalPromotion = errors.New("invalid promotion piece")
	ErrSelfChallenge    = errors.New("players cannot challenge themselves")
	ErrChallengeExpired = errors.New("challenge expired or absent")
	ErrGameTerminal     = errors.New("game already finished")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrNoMoveProvider   = errors.New("no move provider configured")
)
