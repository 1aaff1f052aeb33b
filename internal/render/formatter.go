package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/moin-chess/internal/boardimg"
	"github.com/park285/moin-chess/internal/game"
	"github.com/park285/moin-chess/internal/illustrator"
	"github.com/park285/moin-chess/internal/msgcat"
	"go.uber.org/zap"
)

// BoardRenderer draws a single position. boardimg.Renderer satisfies it.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *nchess.Board, opts boardimg.Options) ([]byte, error)
}

// Formatter turns illustrator results into a menu plus one board per ply.
type Formatter struct {
	catalog *msgcat.Catalog
	boards  BoardRenderer
	logger  *zap.Logger
}

// NewFormatter requires a catalog. boards may be nil to skip PNG diagrams.
func NewFormatter(catalog *msgcat.Catalog, boards BoardRenderer, logger *zap.Logger) (*Formatter, error) {
	if catalog == nil {
		return nil, errors.New("message catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{catalog: catalog, boards: boards, logger: logger}, nil
}

// Write emits res into sink. Failed results become an error block.
func (f *Formatter) Write(ctx context.Context, sink Sink, res *illustrator.Result) {
	if res == nil {
		return
	}
	if res.Err != nil {
		f.writeError(sink, res)
		return
	}
	selected, ok := res.SelectedPly()
	if !ok {
		return
	}

	prefix := "chess-" + idSlug(res.Tag.ID)
	sink.Raw(`<div class="chess" id="` + prefix + `">`)
	if res.Opening.Code != "" {
		sink.Raw(`<p class="chess-opening">`)
		sink.Text(f.catalog.Text("game.opening", map[string]any{
			"Code":  res.Opening.Code,
			"Title": res.Opening.Title,
		}, res.Opening.Code))
		sink.Raw(`</p>`)
	}
	sink.Raw(`<p class="chess-summary">`)
	sink.Text(f.catalog.Text("game.summary", map[string]any{
		"Plies":  len(res.Plies),
		"Result": res.Score,
	}, res.Score))
	sink.Raw(`</p>`)

	sink.Raw(`<label class="chess-menu-label">`)
	sink.Text(f.catalog.Text("menu.prompt", nil, "Show position"))
	sink.Raw(` <select class="chess-menu" data-game="` + prefix + `">`)
	for _, p := range res.Plies {
		sink.Raw(`<option value="` + boardID(prefix, p) + `"`)
		if p.Index == selected.Index {
			sink.Raw(` selected`)
		}
		sink.Raw(`>`)
		sink.Text(f.catalog.Text("menu.option", plyData(res, p), p.Address.MoveNumber()+" "+p.Snapshot.SAN))
		sink.Raw(`</option>`)
	}
	sink.Raw(`</select></label>`)

	for _, p := range res.Plies {
		f.writeBoard(ctx, sink, res, prefix, p, p.Index == selected.Index)
	}
	sink.Raw(`</div>`)
}

func (f *Formatter) writeBoard(ctx context.Context, sink Sink, res *illustrator.Result, prefix string, p game.Ply, visible bool) {
	sink.Raw(`<div class="chessboard" id="` + boardID(prefix, p) + `" data-fen="`)
	sink.Text(p.Snapshot.FEN)
	sink.Raw(`"`)
	if !visible {
		sink.Raw(` hidden`)
	}
	sink.Raw(`><span class="chess-squares">`)
	sink.Text(squares(p.Snapshot.Diagram))
	sink.Raw(`</span>`)

	if visible && f.boards != nil {
		f.writeImage(ctx, sink, res, p)
	}
	sink.Raw(`</div>`)
}

// writeImage embeds a PNG of the selected position. Failures only drop the image.
func (f *Formatter) writeImage(ctx context.Context, sink Sink, res *illustrator.Result, p game.Ply) {
	data := plyData(res, p)
	png, err := f.boards.RenderPNG(ctx, p.Snapshot.Board, boardimg.Options{
		Highlight: &boardimg.Highlight{From: p.Snapshot.From, To: p.Snapshot.To},
		Caption:   f.catalog.Text("board.caption", data, res.Tag.ID),
	})
	if err != nil {
		f.logger.Warn("board image failed",
			zap.String("game_id", res.Tag.ID),
			zap.String("position", p.Address.String()),
			zap.Error(err),
		)
		return
	}
	sink.Raw(`<img class="chess-image" alt="`)
	sink.Text(f.catalog.Text("board.alt", data, res.Tag.ID))
	sink.Raw(`" src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(png) + `">`)
}

func (f *Formatter) writeError(sink Sink, res *illustrator.Result) {
	kind := game.Kind(res.Err)
	data := map[string]any{
		"ID":         res.Tag.ID,
		"Position":   res.Tag.Position,
		"Detail":     errorDetail(res.Err),
		"OriginPage": "",
	}
	var conflict *game.ConflictError
	if errors.As(res.Err, &conflict) {
		data["OriginPage"] = conflict.OriginPage
	}
	sink.Raw(`<div class="chess-error" data-kind="` + html.EscapeString(kind) + `">`)
	sink.Text(f.catalog.Text("error."+kind, data, res.Err.Error()))
	sink.Raw(`</div>`)
}

func errorDetail(err error) string {
	var (
		perr *game.ParseError
		aerr *game.AddressError
		verr *game.ValidationError
	)
	switch {
	case errors.As(err, &perr):
		if perr.Token == "" {
			return perr.Reason
		}
		return perr.Reason + " " + perr.Token + " at " + game.AddressOf(perr.Index).String()
	case errors.As(err, &aerr):
		return aerr.Reason
	case errors.As(err, &verr):
		return strings.TrimSpace(verr.Field + " " + verr.Reason)
	default:
		return err.Error()
	}
}

func plyData(res *illustrator.Result, p game.Ply) map[string]any {
	return map[string]any{
		"ID":         res.Tag.ID,
		"MoveNumber": p.Address.MoveNumber(),
		"SAN":        p.Snapshot.SAN,
		"Position":   p.Address.String(),
	}
}

func boardID(prefix string, p game.Ply) string {
	return prefix + "-" + p.Address.Label()
}

// squares spaces out a 64 character diagram for the client script.
func squares(diagram string) string {
	var b strings.Builder
	b.Grow(len(diagram) * 2)
	for i, r := range diagram {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// idSlug keeps game ids usable inside element ids. Letters, digits and '-' pass through;
// every other rune, '_' included, becomes _<hex>_ so distinct ids never share a slug.
func idSlug(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "_%x_", r)
	}
	return b.String()
}
