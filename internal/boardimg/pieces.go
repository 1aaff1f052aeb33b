package boardimg

import (
	"fmt"
	"image"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Silhouettes on a 45x45 canvas, drawn with the piece's fill and a contrasting outline.
var pieceShapes = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="15" r="6"/>
<path d="M13 38 H32 L28 24 H17 Z"/>`,
	nchess.Knight: `<path d="M14 38 H33 C33 26 30 14 22 10 L19 7 L17 12 C12 15 9 21 10 25 L13 26 L18 22 C19 26 15 31 14 38 Z"/>`,
	nchess.Bishop: `<circle cx="22.5" cy="8" r="3"/>
<path d="M22.5 11 C16 15 14 24 17 31 H28 C31 24 29 15 22.5 11 Z"/>
<path d="M11 38 H34 V34 H11 Z"/>`,
	nchess.Rook: `<path d="M11 38 H34 V34 H31 V18 H34 V9 H29 V13 H25 V9 H20 V13 H16 V9 H11 V18 H14 V34 H11 Z"/>`,
	nchess.Queen: `<path d="M10 37 H35 L38 13 L30 25 L26 10 L22.5 24 L19 10 L15 25 L7 13 Z"/>
<circle cx="7" cy="12" r="2"/>
<circle cx="19" cy="9" r="2"/>
<circle cx="26" cy="9" r="2"/>
<circle cx="38" cy="12" r="2"/>`,
	nchess.King: `<path d="M21 4 H24 V8 H28 V11 H24 V15 H21 V11 H17 V8 H21 Z"/>
<path d="M11 38 H34 L31 22 C28 16 17 16 14 22 Z"/>`,
}

func pieceSVG(piece nchess.Piece) (string, error) {
	shape, ok := pieceShapes[piece.Type()]
	if !ok {
		return "", fmt.Errorf("no shape for piece %v", piece)
	}
	fill, stroke := "#ffffff", "#1b1b1b"
	if piece.Color() == nchess.Black {
		fill, stroke = "#1b1b1b", "#f2f2f2"
	}
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, fill, stroke)
	b.WriteString(shape)
	b.WriteString(`</g></svg>`)
	return b.String(), nil
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	img, ok := pieceCache[key]
	pieceCacheMu.RUnlock()
	if ok {
		return img, nil
	}

	src, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = rgba
	pieceCacheMu.Unlock()
	return rgba, nil
}
