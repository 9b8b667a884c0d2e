// Package boardimage renders PNG previews of court boards: the checkerboard
// in its configured materials plus, when a game is in progress, the piece
// layout taken from the position's FEN.
package boardimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/quietbay/chesscourt/internal/domain"
)

const (
	defaultSquareSize = 48
	minSquareSize     = 16
)

// Painter rasterizes board previews. The zero value is not usable; construct
// with NewPainter.
type Painter struct {
	squareSize int
}

type Option func(*Painter)

// WithSquareSize overrides the pixel size of one board square. Values below
// the minimum are ignored.
func WithSquareSize(px int) Option {
	return func(p *Painter) {
		if px >= minSquareSize {
			p.squareSize = px
		}
	}
}

func NewPainter(opts ...Option) *Painter {
	p := &Painter{squareSize: defaultSquareSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render draws def's checkerboard and, when fen is non-empty, the position
// it describes. An empty fen yields a bare board preview. The returned bytes
// are a complete PNG image.
func (p *Painter) Render(ctx context.Context, def domain.BoardDefinition, fen string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sq := p.squareSize
	margin := sq / 2
	boardSize := sq * 8
	total := boardSize + margin*2
	origin := image.Point{X: margin, Y: margin}

	img := image.NewRGBA(image.Rect(0, 0, total, total))
	p.drawFrame(img, def.Materials)
	p.drawSquares(img, def.Materials, origin)

	if strings.TrimSpace(fen) != "" {
		board, err := boardFromFEN(fen)
		if err != nil {
			return nil, err
		}
		if err := p.drawPieces(img, board, origin); err != nil {
			return nil, err
		}
	}
	p.drawCoordinates(img, def.Materials, origin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Painter) drawFrame(img *image.RGBA, mats domain.CheckerboardMaterials) {
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(frameColor(mats)), image.Point{}, imagedraw.Src)
}

func (p *Painter) drawSquares(img *image.RGBA, mats domain.CheckerboardMaterials, origin image.Point) {
	dark := materialColor(mats.Black, darkFallback)
	light := materialColor(mats.White, lightFallback)

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			clr := light
			if (row+col)%2 == 1 {
				clr = dark
			}
			x := origin.X + col*p.squareSize
			y := origin.Y + row*p.squareSize
			rect := image.Rect(x, y, x+p.squareSize, y+p.squareSize)
			imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func (p *Painter) drawPieces(img *image.RGBA, board *nchess.Board, origin image.Point) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		sprite, err := pieceSprite(piece, p.squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(img, p.squareRect(sq, origin), sprite, image.Point{}, imagedraw.Over)
	}
	return nil
}

// squareRect maps a square to pixel space with rank 8 at the top, so white's
// side renders at the bottom of the preview.
func (p *Painter) squareRect(sq nchess.Square, origin image.Point) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	x := origin.X + col*p.squareSize
	y := origin.Y + row*p.squareSize
	return image.Rect(x, y, x+p.squareSize, y+p.squareSize)
}

func (p *Painter) drawCoordinates(img *image.RGBA, mats domain.CheckerboardMaterials, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor(mats)),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	margin := origin.X
	boardBottom := origin.Y + p.squareSize*8

	for i := 0; i < 8; i++ {
		rankBaseline := origin.Y + i*p.squareSize + (p.squareSize+ascent)/2
		drawCenteredLabel(drawer, string(rune('8'-i)), margin/2, rankBaseline)

		fileCenter := origin.X + i*p.squareSize + p.squareSize/2
		drawCenteredLabel(drawer, string(rune('a'+i)), fileCenter, boardBottom+(margin+ascent)/2)
	}
}

func drawCenteredLabel(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func frameColor(mats domain.CheckerboardMaterials) color.RGBA {
	if mats.Border == "" {
		return frameFallback
	}
	return materialColor(mats.Border, frameFallback)
}

// labelColor picks a coordinate tint that stays readable on whatever frame
// material the board uses.
func labelColor(mats domain.CheckerboardMaterials) color.Color {
	if luminance(frameColor(mats)) < 128 {
		return color.NRGBA{R: 232, G: 228, B: 220, A: 255}
	}
	return color.NRGBA{R: 34, G: 32, B: 30, A: 255}
}

func boardFromFEN(fen string) (*nchess.Board, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return nchess.NewGame(option).Position().Board(), nil
}
