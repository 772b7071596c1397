package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tecu23/room-server/internal/color"
)

func TestClockElapseTurnChargesOnlyThatSide(t *testing.T) {
	c := NewClock(300000)

	c = c.ElapseTurn(color.White, 1500)

	white, black := c.Remaining()
	assert.Equal(t, int64(298500), white)
	assert.Equal(t, int64(300000), black)

	c = c.ElapseTurn(color.Black, 2000)

	white, black = c.Remaining()
	assert.Equal(t, int64(298500), white)
	assert.Equal(t, int64(298000), black)
}

func TestClockExpiryIsMonotonic(t *testing.T) {
	c := NewClock(100)

	assert.False(t, c.IsExpired(color.White))

	c = c.ElapseTurn(color.White, 100)
	assert.True(t, c.IsExpired(color.White))

	// Further elapse never un-expires a side.
	c = c.ElapseTurn(color.White, 50)
	assert.True(t, c.IsExpired(color.White))
	assert.False(t, c.IsExpired(color.Black))
}

func TestClockRemainingClampsNegativeTimes(t *testing.T) {
	c := NewClock(100).ElapseTurn(color.Black, 350)

	assert.True(t, c.IsExpired(color.Black))

	white, black := c.Remaining()
	assert.Equal(t, int64(100), white)
	assert.Equal(t, int64(0), black)
}

func TestFormatClockTime(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"five minutes", 300000, "5:00"},
		{"minute and a half", 90000, "1:30"},
		{"under ten seconds shows tenths", 9400, "9.4"},
		{"zero", 0, "0.0"},
		{"negative clamps to zero", -250, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatClockTime(tt.ms))
		})
	}
}
