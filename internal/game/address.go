package game

import (
	"math"
	"strconv"
	"strings"
)

// maxTurn keeps the ply index of any accepted address within int.
const maxTurn = math.MaxInt/2 - 1

// Color is the side that made a ply.
type Color int

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return ""
	}
}

func (c Color) letter() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		return ""
	}
}

func parseColor(s string) Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white":
		return White
	case "black":
		return Black
	default:
		return NoColor
	}
}

// Address names a ply the way readers do: White's 12th move is 12-White.
type Address struct {
	Turn  int
	Color Color
}

// AddressOf maps a 0-based ply index to its address.
func AddressOf(index int) Address {
	color := White
	if index%2 == 1 {
		color = Black
	}
	return Address{Turn: index/2 + 1, Color: color}
}

// ParseAddress reads "<turn>-<White|Black>". The color is case-insensitive.
func ParseAddress(s string) (Address, error) {
	input := strings.TrimSpace(s)
	sep := strings.LastIndex(input, "-")
	if sep <= 0 || sep == len(input)-1 {
		return Address{}, &AddressError{Input: s, Reason: "expected <turn>-<White|Black>"}
	}
	turn, err := strconv.Atoi(input[:sep])
	if err != nil {
		return Address{}, &AddressError{Input: s, Reason: "turn is not a number"}
	}
	addr := Address{Turn: turn, Color: parseColor(input[sep+1:])}
	if _, err := addr.index(s); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Index is the inverse of AddressOf. It does not know the sequence length;
// Sequence.Locate performs the range check.
func (a Address) Index() (int, error) {
	return a.index(a.String())
}

func (a Address) index(input string) (int, error) {
	if a.Turn < 1 {
		return 0, &AddressError{Input: input, Reason: "turn must be at least 1"}
	}
	if a.Turn > maxTurn {
		return 0, &AddressError{Input: input, Reason: "turn is too large"}
	}
	switch a.Color {
	case White:
		return (a.Turn - 1) * 2, nil
	case Black:
		return (a.Turn-1)*2 + 1, nil
	default:
		return 0, &AddressError{Input: input, Reason: "color must be White or Black"}
	}
}

func (a Address) String() string {
	return strconv.Itoa(a.Turn) + "-" + a.Color.String()
}

// Label is the short id fragment shared by menu entries and the boards they reveal.
func (a Address) Label() string {
	return strconv.Itoa(a.Turn) + a.Color.letter()
}

// MoveNumber renders the address in movetext style: "3." for White, "3..." for Black.
func (a Address) MoveNumber() string {
	if a.Color == Black {
		return strconv.Itoa(a.Turn) + "..."
	}
	return strconv.Itoa(a.Turn) + "."
}
