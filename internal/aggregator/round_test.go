package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want int
	}{
		{"zero", 0, 0},
		{"one second", time.Second, 1},
		{"exact minute", 60 * time.Second, 1},
		{"minute and a second", 61 * time.Second, 2},
		{"hour", time.Hour, 60},
		{"sub-second remainder dropped", time.Minute + 500*time.Millisecond, 1},
		{"negative", -time.Minute, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinutes(tt.in))
		})
	}
}

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{3, 0},
		{7, 0},
		{8, 15},
		{14, 15},
		{15, 15},
		{22, 15},
		{23, 30},
		{27, 30},
		{33, 30},
		{35, 30},
		{38, 45},
		{39, 45},
		{64, 60},
		{68, 75},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundMinutes(tt.in), "RoundMinutes(%d)", tt.in)
	}
}

func TestRoundMinutesIsMultipleOfIncrement(t *testing.T) {
	for m := 0; m <= 24*60; m++ {
		got := RoundMinutes(m)
		assert.Zero(t, got%BillingIncrement, "RoundMinutes(%d) = %d", m, got)
		assert.LessOrEqual(t, abs(got-m), BillingIncrement/2+1)
	}
}
