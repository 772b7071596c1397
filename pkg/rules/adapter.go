package rules

import (
	"errors"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/tecu23/room-server/internal/color"
)

var (
	// ErrIllegalMove covers malformed payloads and moves the rules
	// library rejects. Surfaced nowhere; the caller drops the move.
	ErrIllegalMove = errors.New("illegal move")

	// ErrNotYourTurn is returned when the submitted move does not belong
	// to the side to move.
	ErrNotYourTurn = errors.New("not your turn")
)

// Move is the wire shape of a move attempt. Promotion is empty for
// ordinary moves; a pawn reaching the last rank without one is promoted
// to a queen, matching the client's optimistic default.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// UCI returns the move in UCI notation, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

// Adapter exposes the rules library as a stateless collaborator. It owns
// no game state; every method is deterministic in its inputs.
type Adapter struct{}

// NewAdapter creates a rules adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// ApplyMove validates and applies a move on the board. The board is
// mutated only on success; any rejection leaves it untouched. Returns
// the normalized move (lowercased squares, defaulted promotion).
func (a *Adapter) ApplyMove(b *Board, mv Move, expectedSide color.Color) (Move, error) {
	normalized, err := normalizeMove(b, mv)
	if err != nil {
		return Move{}, err
	}

	if b.Turn() != expectedSide {
		return Move{}, ErrNotYourTurn
	}

	if err := b.game.PushNotationMove(normalized.UCI(), chess.UCINotation{}, nil); err != nil {
		return Move{}, ErrIllegalMove
	}

	return normalized, nil
}

// TerminalState classifies a position.
type TerminalState int

// Possible terminal classifications for a position.
const (
	Ongoing TerminalState = iota
	Checkmate
	Draw
)

// Terminal is the result of a terminal-status check. Winner is only
// meaningful for Checkmate.
type Terminal struct {
	State  TerminalState
	Winner color.Color
}

// TerminalStatus reports whether the position ended the game. For
// checkmate the winner is the side that delivered it.
func (a *Adapter) TerminalStatus(b *Board) Terminal {
	switch b.game.Outcome() {
	case chess.WhiteWon:
		return Terminal{State: Checkmate, Winner: color.White}
	case chess.BlackWon:
		return Terminal{State: Checkmate, Winner: color.Black}
	case chess.Draw:
		return Terminal{State: Draw}
	}

	// Boards loaded mid-game may not carry an outcome yet.
	switch b.game.Position().Status() {
	case chess.Checkmate:
		return Terminal{State: Checkmate, Winner: b.Turn().Opp()}
	case chess.Stalemate:
		return Terminal{State: Draw}
	}

	return Terminal{State: Ongoing}
}

// normalizeMove checks the structural shape of a client move and fills
// in the default queen promotion for an unannotated promoting pawn push.
func normalizeMove(b *Board, mv Move) (Move, error) {
	from := strings.ToLower(strings.TrimSpace(mv.From))
	to := strings.ToLower(strings.TrimSpace(mv.To))
	promo := strings.ToLower(strings.TrimSpace(mv.Promotion))

	if !validSquare(from) || !validSquare(to) || from == to {
		return Move{}, ErrIllegalMove
	}

	switch promo {
	case "", "q", "r", "b", "n":
	default:
		return Move{}, ErrIllegalMove
	}

	// A promotion field only means something on a promoting pawn push;
	// anywhere else it is ignored, as the reference client's rules
	// library does.
	if isPromotionPush(b, from, to) {
		if promo == "" {
			promo = "q"
		}
	} else {
		promo = ""
	}

	return Move{From: from, To: to, Promotion: promo}, nil
}

// isPromotionPush reports whether a pawn on from would land on its last
// rank at to. Legality is not checked here; the rules library does that.
func isPromotionPush(b *Board, from, to string) bool {
	if to[1] != '1' && to[1] != '8' {
		return false
	}

	piece := b.game.Position().Board().Piece(squareOf(from))

	return piece.Type() == chess.Pawn
}

func validSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func squareOf(s string) chess.Square {
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')

	return chess.Square(rank*8 + file)
}
