package courtdto

// Frame types exchanged over the websocket gateway.
const (
	FrameHello   = "hello"
	FrameCommand = "command"
	FrameMove    = "move"
	FrameReply   = "reply"
	FrameEvent   = "event"
	FrameError   = "error"
)

// ClientFrame is what a connected client sends: a hello to identify itself,
// then commands or moves.
type ClientFrame struct {
	Type string `json:"type"`

	// hello
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`

	// command
	Text string `json:"text,omitempty"`

	// move
	Board string `json:"board,omitempty"`
	Move  string `json:"move,omitempty"`
}

// ServerFrame is what the gateway pushes back. Reply frames answer the
// client's own command; event frames fan out to everyone watching a board.
type ServerFrame struct {
	Type  string       `json:"type"`
	Lines []string     `json:"lines,omitempty"`
	Move  *MoveReport  `json:"move,omitempty"`
	State *GameState   `json:"state,omitempty"`
	Error *DomainError `json:"error,omitempty"`
}
