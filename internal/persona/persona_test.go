package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want string
	}{
		{
			name: "current borrower with strong kept rate is friendly",
			in:   Signals{DPD: 0, KeptPromises: 3, BrokenPromises: 1},
			want: Friendly,
		},
		{
			name: "deep delinquency with repeated no answers is avoider",
			in:   Signals{DPD: 45, KeptPromises: 2, BrokenPromises: 1, CallOutcomes: []string{"no_answer", "no_answer", "connected"}},
			want: Avoider,
		},
		{
			name: "two broken promises is aggressive regardless of kept rate",
			in:   Signals{DPD: 10, KeptPromises: 5, BrokenPromises: 2},
			want: Aggressive,
		},
		{
			name: "no promise history reads as aggressive",
			in:   Signals{DPD: 10},
			want: Aggressive,
		},
		{
			name: "even split kept rate is neutral not distressed",
			in:   Signals{DPD: 20, KeptPromises: 1, BrokenPromises: 1},
			want: Neutral,
		},
		{
			name: "everything else is neutral",
			in:   Signals{DPD: 5, KeptPromises: 3, BrokenPromises: 1},
			want: Neutral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestKeptRate(t *testing.T) {
	assert.Zero(t, Signals{}.KeptRate())
	assert.InDelta(t, 0.75, Signals{KeptPromises: 3, BrokenPromises: 1}.KeptRate(), 1e-9)
}

func TestAvoiderNeedsBothDepthAndNoAnswers(t *testing.T) {
	// Deep DPD alone is not avoidance.
	s := Signals{DPD: 45, KeptPromises: 2, BrokenPromises: 1, CallOutcomes: []string{"connected"}}
	assert.NotEqual(t, Avoider, Classify(s))
}
