// Package rules wraps the chess rules library behind a small stateless
// adapter. The rest of the server treats board state as an opaque handle
// and exchanges positions as FEN strings.
package rules

import (
	"fmt"

	"github.com/corentings/chess/v2"

	"github.com/tecu23/room-server/internal/color"
)

// Board is an opaque handle to one position. Only this package reads or
// mutates the underlying game; callers pass the handle through and use
// FEN for anything wire-facing.
type Board struct {
	game *chess.Game
}

// InitialBoard returns the canonical starting position.
func InitialBoard() *Board {
	return &Board{game: chess.NewGame()}
}

// BoardFromFEN builds a board from a FEN string.
func BoardFromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}

	return &Board{game: chess.NewGame(opt)}, nil
}

// FEN returns the current position in FEN notation.
func (b *Board) FEN() string {
	return b.game.FEN()
}

// Turn returns the side to move.
func (b *Board) Turn() color.Color {
	return color.Color(b.game.Position().Turn().String())
}
