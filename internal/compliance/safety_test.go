package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectAbuse(t *testing.T) {
	assert.True(t, DetectAbuse("this is a SCAM, you people are frauds"))
	assert.True(t, DetectAbuse("tum chor ho"))
	assert.True(t, DetectAbuse("mee company donga company"))
	assert.False(t, DetectAbuse("i will pay next week"))
	assert.False(t, DetectAbuse(""))
}

func TestDetectFakeNumber(t *testing.T) {
	tests := []struct {
		phone string
		fake  bool
	}{
		{"9999999999", true},
		{"8888888888", true},
		{"1234567890", true},
		{"9876543210", true},
		{"0123456789", true}, // leading digit below 6
		{"5551234567", true},
		{"9876501234", false},
		{"7012345678", false},
		{"9999999998", false}, // nine repeats then a different digit
		{"999999999", false},  // repeated but short of ten digits
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fake, DetectFakeNumber(tt.phone), "phone %s", tt.phone)
	}
}

func TestCallWindowBoundaries(t *testing.T) {
	w := DefaultCallWindow()

	at := func(hour int) time.Time {
		return time.Date(2025, 11, 4, hour, 30, 0, 0, w.Location)
	}

	assert.False(t, w.Check(at(7)).OK)
	assert.True(t, w.Check(at(8)).OK)
	assert.True(t, w.Check(at(19)).OK)
	assert.False(t, w.Check(at(20)).OK)
	assert.Equal(t, "08:00–20:00 IST", w.Check(at(12)).Window)
}

func TestCallWindowConvertsToIST(t *testing.T) {
	w := DefaultCallWindow()
	// 03:00 UTC is 08:30 IST, inside the window.
	utc := time.Date(2025, 11, 4, 3, 0, 0, 0, time.UTC)
	res := w.Check(utc)
	assert.True(t, res.OK)
	assert.Equal(t, 8, res.Hour)
}
