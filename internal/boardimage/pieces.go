package boardimage

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type spriteKey struct {
	piece nchess.Piece
	size  int
}

var (
	spriteCache   = map[spriteKey]image.Image{}
	spriteCacheMu sync.RWMutex
)

// pieceSprite rasterizes the SVG glyph for piece at size x size pixels.
// Sprites are cached per piece and size; callers must not mutate the
// returned image.
func pieceSprite(piece nchess.Piece, size int) (image.Image, error) {
	key := spriteKey{piece: piece, size: size}

	spriteCacheMu.RLock()
	if img, ok := spriteCache[key]; ok {
		spriteCacheMu.RUnlock()
		return img, nil
	}
	spriteCacheMu.RUnlock()

	name := spriteAssetName(piece)
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(size)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	spriteCacheMu.Lock()
	spriteCache[key] = img
	spriteCacheMu.Unlock()

	return img, nil
}

func spriteAssetName(piece nchess.Piece) string {
	var prefix string
	if piece.Color() == nchess.White {
		prefix = "w"
	} else {
		prefix = "b"
	}

	var suffix string
	switch piece.Type() {
	case nchess.King:
		suffix = "K"
	case nchess.Queen:
		suffix = "Q"
	case nchess.Rook:
		suffix = "R"
	case nchess.Bishop:
		suffix = "B"
	case nchess.Knight:
		suffix = "N"
	case nchess.Pawn:
		suffix = "P"
	}

	return fmt.Sprintf("assets/pieces/%s%s.svg", prefix, suffix)
}
