// Package engine produces moves for the CPU player. The concrete
// implementation drives a UCI binary; callers only see MoveProvider.
package engine

import "context"

// MoveProvider returns the best move in UCI form for the position reached by
// playing movesUCI from fen. An empty fen means the standard starting
// position.
type MoveProvider interface {
	BestMove(ctx context.Context, fen string, movesUCI []string) (string, error)
}
