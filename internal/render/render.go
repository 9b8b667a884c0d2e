// Package render pushes board presentation out to the world. The core only
// depends on the Renderer interface; the concrete Bridge speaks HTTP to the
// block-placement service, and Nop serves deployments without one.
package render

import (
	"context"

	"github.com/quietbay/chesscourt/internal/domain"
)

// Renderer paints a board in the world. Both calls are presentation only
// and must never touch game state.
type Renderer interface {
	// Checkerboard repaints the squares and border from the board's
	// materials.
	Checkerboard(ctx context.Context, def domain.BoardDefinition) error
	// Position places the pieces for the given FEN.
	Position(ctx context.Context, def domain.BoardDefinition, fen string) error
}

// Nop renders nothing and always succeeds.
type Nop struct{}

func (Nop) Checkerboard(context.Context, domain.BoardDefinition) error { return nil }

func (Nop) Position(context.Context, domain.BoardDefinition, string) error { return nil }
