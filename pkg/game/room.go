package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tecu23/room-server/internal/color"
	"github.com/tecu23/room-server/pkg/rules"
)

// Status is the lifecycle state of a room.
type Status string

// Room lifecycle: waiting until the second seat fills, active while the
// game runs, finished exactly once on checkmate, draw or timeout.
const (
	StatusWaitingForOpponent Status = "waiting_for_opponent"
	StatusActive             Status = "active"
	StatusFinished           Status = "finished"
)

// EndReason names why a room finished.
type EndReason string

// All the ways a game can end.
const (
	ReasonCheckmate EndReason = "checkmate"
	ReasonTimeout   EndReason = "timeout"
	ReasonDraw      EndReason = "draw"
)

var (
	// ErrRoomFull is returned on a join against a room with both seats
	// taken. The only rejection surfaced back to the client.
	ErrRoomFull = errors.New("room is full")

	// ErrRoomNotActive is returned on a move against a room that has not
	// started or already finished.
	ErrRoomNotActive = errors.New("room is not active")
)

// Outcome describes a finished game. Winner is empty for a draw.
type Outcome struct {
	Winner color.Color
	Reason EndReason
}

// Snapshot is the broadcastable view of a room: position plus clamped
// clocks.
type Snapshot struct {
	FEN     string
	WhiteMs int64
	BlackMs int64
}

// MoveResult is what a move attempt produced. Applied is false when the
// game ended on time before the move could be considered; the move is
// discarded even if it was legal.
type MoveResult struct {
	Move    rules.Move
	FEN     string
	WhiteMs int64
	BlackMs int64

	Applied  bool
	Finished bool
	Outcome  Outcome
}

// Room owns one match's full state: seat bindings, board handle, clock
// and move history. All access goes through its mutex so one event is
// fully processed before the next.
type Room struct {
	ID string

	mu     sync.Mutex
	status Status
	seats  map[color.Color]uuid.UUID

	board   *rules.Board
	history []rules.Move

	clock         Clock
	timeControlMs int64
	lastMoveAt    time.Time

	rules *rules.Adapter
	clk   clockwork.Clock

	logger *zap.Logger
}

// NewRoom creates a room in the waiting state with the creator seated as
// white. Clocks show the configured time control immediately so the
// creator's initial snapshot carries the right timers.
func NewRoom(
	id string,
	creator uuid.UUID,
	timeControlMs int64,
	adapter *rules.Adapter,
	clk clockwork.Clock,
	logger *zap.Logger,
) *Room {
	return &Room{
		ID:     id,
		status: StatusWaitingForOpponent,
		seats:  map[color.Color]uuid.UUID{color.White: creator},

		board: rules.InitialBoard(),

		clock:         NewClock(timeControlMs),
		timeControlMs: timeControlMs,

		rules:  adapter,
		clk:    clk,
		logger: logger,
	}
}

// Join seats the second connection as black and activates the room:
// clocks reset to the time control and the move timer starts. Any join
// after that is rejected with ErrRoomFull.
func (r *Room) Join(conn uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaitingForOpponent {
		return Snapshot{}, ErrRoomFull
	}

	r.seats[color.Black] = conn
	r.clock = NewClock(r.timeControlMs)
	r.lastMoveAt = r.clk.Now()
	r.status = StatusActive

	r.logger.Info("room active",
		zap.String("room_id", r.ID),
		zap.String("white", r.seats[color.White].String()),
		zap.String("black", conn.String()))

	return r.snapshotLocked(), nil
}

// Move processes one move attempt from a connection. Clock accounting
// happens before move application: the mover is charged the wall-clock
// time since the last state change, and if either side is already out of
// time the game ends on timeout and the move is discarded.
func (r *Room) Move(conn uuid.UUID, mv rules.Move) (*MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return nil, ErrRoomNotActive
	}

	// Side to move comes from the board, never from clock bookkeeping.
	mover := r.board.Turn()

	seat, seated := r.seatOfLocked(conn)
	if !seated || seat != mover {
		return nil, rules.ErrNotYourTurn
	}

	now := r.clk.Now()
	r.clock = r.clock.ElapseTurn(mover, now.Sub(r.lastMoveAt).Milliseconds())
	r.lastMoveAt = now

	if r.clock.IsExpired(color.White) {
		return r.finishLocked(Outcome{Winner: color.Black, Reason: ReasonTimeout}), nil
	}
	if r.clock.IsExpired(color.Black) {
		return r.finishLocked(Outcome{Winner: color.White, Reason: ReasonTimeout}), nil
	}

	normalized, err := r.rules.ApplyMove(r.board, mv, mover)
	if err != nil {
		return nil, err
	}

	r.history = append(r.history, normalized)

	whiteMs, blackMs := r.clock.Remaining()
	result := &MoveResult{
		Move:    normalized,
		FEN:     r.board.FEN(),
		WhiteMs: whiteMs,
		BlackMs: blackMs,
		Applied: true,
	}

	r.logger.Info("processed move",
		zap.String("room_id", r.ID),
		zap.String("move", normalized.UCI()),
		zap.String("white_clock", FormatClockTime(whiteMs)),
		zap.String("black_clock", FormatClockTime(blackMs)))

	switch term := r.rules.TerminalStatus(r.board); term.State {
	case rules.Checkmate:
		finished := r.finishLocked(Outcome{Winner: mover, Reason: ReasonCheckmate})
		finished.Move = result.Move
		finished.Applied = true
		return finished, nil
	case rules.Draw:
		finished := r.finishLocked(Outcome{Reason: ReasonDraw})
		finished.Move = result.Move
		finished.Applied = true
		return finished, nil
	}

	return result, nil
}

// Snapshot returns the room's current position and clamped clocks.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// Status returns the room's lifecycle state.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.status
}

// Members returns the seated connection ids, white first.
func (r *Room) Members() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]uuid.UUID, 0, 2)
	for _, side := range []color.Color{color.White, color.Black} {
		if id, ok := r.seats[side]; ok {
			members = append(members, id)
		}
	}

	return members
}

// SeatOf resolves a connection to its side.
func (r *Room) SeatOf(conn uuid.UUID) (color.Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.seatOfLocked(conn)
}

// History returns the accepted moves in order.
func (r *Room) History() []rules.Move {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]rules.Move, len(r.history))
	copy(out, r.history)

	return out
}

func (r *Room) seatOfLocked(conn uuid.UUID) (color.Color, bool) {
	// White first so a connection somehow holding both seats resolves
	// deterministically.
	for _, side := range []color.Color{color.White, color.Black} {
		if id, ok := r.seats[side]; ok && id == conn {
			return side, true
		}
	}

	return "", false
}

func (r *Room) snapshotLocked() Snapshot {
	whiteMs, blackMs := r.clock.Remaining()

	return Snapshot{FEN: r.board.FEN(), WhiteMs: whiteMs, BlackMs: blackMs}
}

func (r *Room) finishLocked(outcome Outcome) *MoveResult {
	r.status = StatusFinished

	whiteMs, blackMs := r.clock.Remaining()

	r.logger.Info("game over",
		zap.String("room_id", r.ID),
		zap.String("winner", string(outcome.Winner)),
		zap.String("reason", string(outcome.Reason)))

	return &MoveResult{
		FEN:      r.board.FEN(),
		WhiteMs:  whiteMs,
		BlackMs:  blackMs,
		Finished: true,
		Outcome:  outcome,
	}
}
