package game

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	moveNumberPrefix = regexp.MustCompile(`^\d+\.+`)
	nagToken         = regexp.MustCompile(`^\$\d+$`)

	resultTokens = map[string]struct{}{
		"1-0":     {},
		"0-1":     {},
		"1/2-1/2": {},
		"½-½":     {},
		"*":       {},
	}

	ecoOnce sync.Once
	ecoFind func(moves []*nchess.Move) (string, string)
)

// Snapshot is the board reached after a ply.
type Snapshot struct {
	SAN     string
	UCI     string
	FEN     string
	Diagram string
	From    nchess.Square
	To      nchess.Square
	Board   *nchess.Board
}

// Ply is one half-move of the main line together with the position it produced.
type Ply struct {
	Index    int
	Address  Address
	Snapshot Snapshot
}

// Opening is the ECO classification of a main line.
type Opening struct {
	Code  string
	Title string
}

// Sequence is the flattened main line of a parsed game. It is never empty.
type Sequence struct {
	plies     []Ply
	Canonical string
	Opening   Opening
	Result    string
}

// Len returns the number of plies.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.plies)
}

// Last returns the terminal ply of the main line.
func (s *Sequence) Last() Ply {
	return s.plies[len(s.plies)-1]
}

// CanonicalExport returns the deterministic movetext used for storage and comparison.
func CanonicalExport(s *Sequence) string {
	if s == nil {
		return ""
	}
	return s.Canonical
}

// Build replays the main line of moveText from the initial position.
// Variations, comments, headers, NAGs, move numbers and results are skipped.
func Build(moveText string) (*Sequence, error) {
	tokens := moveTokens(moveText)
	if len(tokens) == 0 {
		return nil, &ParseError{Reason: "no moves"}
	}

	g := nchess.NewGame()
	plies := make([]Ply, 0, len(tokens))
	for i, tok := range tokens {
		before := g.Position()
		if err := applyToken(g, tok); err != nil {
			return nil, &ParseError{Reason: "illegal or unreadable move", Token: tok, Index: i, Err: err}
		}
		moves := g.Moves()
		if len(moves) != i+1 {
			return nil, &ParseError{Reason: "move was not recorded", Token: tok, Index: i}
		}
		mv := moves[len(moves)-1]
		after := g.Position()
		plies = append(plies, Ply{
			Index:   i,
			Address: AddressOf(i),
			Snapshot: Snapshot{
				SAN:     nchess.AlgebraicNotation{}.Encode(before, mv),
				UCI:     mv.String(),
				FEN:     g.FEN(),
				Diagram: diagram(after.Board()),
				From:    mv.S1(),
				To:      mv.S2(),
				Board:   after.Board(),
			},
		})
	}

	seq := &Sequence{
		plies:     plies,
		Canonical: canonicalMovetext(plies),
		Result:    resultToken(g.Outcome()),
	}
	seq.Opening.Code, seq.Opening.Title = classifyOpening(g.Moves())
	return seq, nil
}

func applyToken(g *nchess.Game, tok string) error {
	pos := g.Position()
	err := g.PushNotationMove(tok, nchess.AlgebraicNotation{}, nil)
	if err == nil {
		return nil
	}
	if bare := strings.TrimRight(tok, "+#"); bare != tok && bare != "" {
		if g.PushNotationMove(bare, nchess.AlgebraicNotation{}, nil) == nil {
			return nil
		}
	}
	if mv, uerr := (nchess.UCINotation{}).Decode(pos, strings.ToLower(tok)); uerr == nil {
		return g.Move(mv, nil)
	}
	return err
}

func canonicalMovetext(plies []Ply) string {
	var b strings.Builder
	for _, p := range plies {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if p.Address.Color == White {
			b.WriteString(p.Address.MoveNumber())
			b.WriteByte(' ')
		}
		b.WriteString(p.Snapshot.SAN)
	}
	return b.String()
}

// moveTokens lexes movetext into bare move tokens of the main line.
func moveTokens(text string) []string {
	var (
		raw      []string
		cur      strings.Builder
		braces   bool
		brackets bool
		quoted   bool
		parens   int
	)
	flush := func() {
		if cur.Len() > 0 {
			raw = append(raw, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if brackets {
			switch {
			case r == '"':
				quoted = !quoted
			case r == ']' && !quoted:
				brackets = false
			}
			continue
		}
		if braces {
			if r == '}' {
				braces = false
			}
			continue
		}
		switch {
		case r == '{':
			flush()
			braces = true
		case r == '[' && parens == 0:
			flush()
			brackets = true
		case r == '(':
			flush()
			parens++
		case r == ')':
			flush()
			if parens > 0 {
				parens--
			}
		case parens > 0:
			// inside a variation
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if tok = cleanToken(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func cleanToken(tok string) string {
	if _, ok := resultTokens[tok]; ok {
		return ""
	}
	if nagToken.MatchString(tok) {
		return ""
	}
	tok = moveNumberPrefix.ReplaceAllString(tok, "")
	tok = strings.TrimSuffix(tok, "e.p.")
	tok = strings.TrimRight(tok, "!?")
	switch tok {
	case "0-0", "0-0+", "0-0#":
		tok = "O-O" + strings.TrimPrefix(tok, "0-0")
	case "0-0-0", "0-0-0+", "0-0-0#":
		tok = "O-O-O" + strings.TrimPrefix(tok, "0-0-0")
	}
	return tok
}

var diagramRanks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
var diagramFiles = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}

// diagram lists the 64 squares from a8 to h1; '.' is empty, uppercase is White.
func diagram(board *nchess.Board) string {
	var b strings.Builder
	b.Grow(64)
	for _, rank := range diagramRanks {
		for _, file := range diagramFiles {
			b.WriteString(PieceLetter(board.Piece(nchess.NewSquare(file, rank))))
		}
	}
	return b.String()
}

// PieceLetter returns the FEN letter of piece, or "." for an empty square.
func PieceLetter(piece nchess.Piece) string {
	var letter string
	switch piece.Type() {
	case nchess.King:
		letter = "k"
	case nchess.Queen:
		letter = "q"
	case nchess.Rook:
		letter = "r"
	case nchess.Bishop:
		letter = "b"
	case nchess.Knight:
		letter = "n"
	case nchess.Pawn:
		letter = "p"
	default:
		return "."
	}
	if piece.Color() == nchess.White {
		return strings.ToUpper(letter)
	}
	return letter
}

func resultToken(outcome nchess.Outcome) string {
	switch outcome {
	case nchess.WhiteWon:
		return "1-0"
	case nchess.BlackWon:
		return "0-1"
	case nchess.Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

func classifyOpening(moves []*nchess.Move) (string, string) {
	ecoOnce.Do(func() {
		book := opening.NewBookECO()
		ecoFind = func(moves []*nchess.Move) (string, string) {
			if book == nil {
				return "", ""
			}
			if eco := book.Find(moves); eco != nil {
				return eco.Code(), eco.Title()
			}
			return "", ""
		}
	})
	return ecoFind(moves)
}
