// Package game defines a single match: the room state machine and the
// two-sided countdown clock it runs on.
package game

import (
	"fmt"

	"github.com/tecu23/room-server/internal/color"
)

// Clock holds the remaining time for both sides in milliseconds. It is a
// plain value with no internal time source; the room feeds it wall-clock
// elapsed time. A side's time may go negative between expiry detection
// and the game-over broadcast; Remaining clamps for display.
type Clock struct {
	whiteMs int64
	blackMs int64
}

// NewClock creates a clock with the given time per side.
func NewClock(perSideMs int64) Clock {
	return Clock{whiteMs: perSideMs, blackMs: perSideMs}
}

// ElapseTurn charges elapsed milliseconds to one side's clock. No
// clamping; the caller checks expiry before clamping for display.
func (c Clock) ElapseTurn(side color.Color, elapsedMs int64) Clock {
	if side == color.White {
		c.whiteMs -= elapsedMs
	} else {
		c.blackMs -= elapsedMs
	}

	return c
}

// IsExpired reports whether a side has run out of time.
func (c Clock) IsExpired(side color.Color) bool {
	if side == color.White {
		return c.whiteMs <= 0
	}

	return c.blackMs <= 0
}

// Remaining returns both times clamped to zero for display.
func (c Clock) Remaining() (whiteMs, blackMs int64) {
	return clampMs(c.whiteMs), clampMs(c.blackMs)
}

func clampMs(ms int64) int64 {
	if ms < 0 {
		return 0
	}

	return ms
}

// FormatClockTime formats a duration in milliseconds to a user-friendly
// string (e.g., "1:30"). Used for logging.
func FormatClockTime(timeMs int64) string {
	timeMs = clampMs(timeMs)

	totalSeconds := timeMs / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	// For times less than 10 seconds, show decimal
	if timeMs < 10000 {
		tenths := (timeMs % 1000) / 100
		return fmt.Sprintf("%d.%d", totalSeconds, tenths)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
