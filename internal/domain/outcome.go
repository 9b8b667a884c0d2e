package domain

type OutcomeMethod string

const (
	MethodCheckmate OutcomeMethod = "checkmate"
	MethodStalemate OutcomeMethod = "stalemate"
	MethodDraw      OutcomeMethod = "draw"
	MethodForfeit   OutcomeMethod = "forfeit"
	MethodAborted   OutcomeMethod = "aborted"
)

// Outcome describes how a game ended. The zero value means the game is still
// in progress. Winner is set for checkmate and forfeit only.
type Outcome struct {
	Method OutcomeMethod `json:"method,omitempty"`
	Winner Color         `json:"winner,omitempty"`
}

func (o Outcome) Terminal() bool { return o.Method != "" }

// Recordable reports whether the outcome belongs in the match archive.
// Aborted games (board deleted, forced reload) are not matches.
func (o Outcome) Recordable() bool {
	return o.Terminal() && o.Method != MethodAborted
}

func Checkmate(winner Color) Outcome { return Outcome{Method: MethodCheckmate, Winner: winner} }
func Stalemate() Outcome             { return Outcome{Method: MethodStalemate} }
func Draw() Outcome                  { return Outcome{Method: MethodDraw} }
func Forfeit(winner Color) Outcome   { return Outcome{Method: MethodForfeit, Winner: winner} }
func Aborted() Outcome               { return Outcome{Method: MethodAborted} }
