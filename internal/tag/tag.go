// Package tag parses the arguments of a chess tag: "Game <id>" or "Board <id> <turn>-<Color>".
package tag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/park285/moin-chess/internal/game"
)

const (
	ModeGame  = "Game"
	ModeBoard = "Board"
)

var validate = validator.New()

// Tag is a parsed tag header. ID is already sanitized.
type Tag struct {
	Mode     string `validate:"required,oneof=Game Board"`
	ID       string `validate:"required"`
	Position string `validate:"required_if=Mode Board"`
}

// IsBoard reports whether the tag shows a single stored position.
func (t Tag) IsBoard() bool { return t.Mode == ModeBoard }

// Parse reads space separated tag arguments. Tokens after the position are ignored.
func Parse(formatArgs string, maxIDLength int) (Tag, error) {
	fields := strings.Fields(formatArgs)
	var t Tag
	if len(fields) > 0 {
		t.Mode = canonicalMode(fields[0])
	}
	if len(fields) > 1 {
		t.ID = game.SanitizeID(fields[1], maxIDLength)
	}
	if len(fields) > 2 && t.Mode == ModeBoard {
		t.Position = fields[2]
	}

	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return Tag{}, &game.ValidationError{Reason: err.Error()}
		}
		fe := verrs[0]
		return Tag{}, &game.ValidationError{Field: fieldName(fe.Field()), Reason: describe(fe, fields)}
	}
	return t, nil
}

func canonicalMode(s string) string {
	switch {
	case strings.EqualFold(s, ModeGame):
		return ModeGame
	case strings.EqualFold(s, ModeBoard):
		return ModeBoard
	default:
		return s
	}
}

func fieldName(f string) string {
	switch f {
	case "ID":
		return "game id"
	case "Position":
		return "position"
	default:
		return "mode"
	}
}

func describe(fe validator.FieldError, fields []string) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "ID" && len(fields) > 1 {
			return fmt.Sprintf("%q has no usable characters", fields[1])
		}
		return "is required"
	case "required_if":
		return "is required for Board tags, e.g. 12-White"
	case "oneof":
		return fmt.Sprintf("%q must be one of Game, Board", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
