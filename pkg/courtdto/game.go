package courtdto

import "time"

// Outcome is empty while a game is still running.
type Outcome struct {
	Method string `json:"method,omitempty"`
	Winner string `json:"winner,omitempty"`
}

type GameState struct {
	GameID     string            `json:"game_id"`
	Board      string            `json:"board"`
	White      Player            `json:"white"`
	Black      Player            `json:"black"`
	Turn       string            `json:"turn"`
	Outcome    Outcome           `json:"outcome"`
	FEN        string            `json:"fen"`
	MovesUCI   []string          `json:"moves_uci,omitempty"`
	MovesSAN   []string          `json:"moves_san,omitempty"`
	PGN        string            `json:"pgn,omitempty"`
	Promotions map[string]string `json:"promotions,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
}

// MoveReport summarises one attempted move. Legal=false means the move was
// rejected by the rules and nothing changed.
type MoveReport struct {
	Legal   bool       `json:"legal"`
	Mover   string     `json:"mover,omitempty"`
	UCI     string     `json:"uci,omitempty"`
	SAN     string     `json:"san,omitempty"`
	Check   bool       `json:"check,omitempty"`
	Outcome Outcome    `json:"outcome"`
	Turn    string     `json:"turn,omitempty"`
	State   *GameState `json:"state,omitempty"`
}

type Challenge struct {
	Board           string    `json:"board"`
	Challenger      Player    `json:"challenger"`
	Invitee         Player    `json:"invitee"`
	ChallengerColor string    `json:"challenger_color"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

type ArchivedGame struct {
	GameID    string    `json:"game_id"`
	Board     string    `json:"board"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Result    string    `json:"result"`
	Method    string    `json:"method"`
	MovesSAN  []string  `json:"moves_san,omitempty"`
	PGN       string    `json:"pgn,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}
