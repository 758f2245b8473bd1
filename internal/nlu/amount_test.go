package nlu

import "testing"

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		text string
		want int64
		ok   bool
	}{
		{"₹1200 next friday", 1200, true},
		{"rs 500", 500, true},
		{"rs. 2,500", 2500, true},
		{"rupees 10000", 10000, true},
		{"i can do 1500", 1500, true},
		{"₹1,20,000", 120000, true},
		{"send 1,200 please", 1200, true},
		{"five thousand", 5000, true},
		{"paanch hazaar dunga", 5000, true},
		{"aidu veyyi istanu", 5000, true},
		{"rendu veyyi", 2000, true},
		{"twenty", 20, true},
		{"nothing here", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got := extractAmount(tt.text)
		if tt.ok {
			if got == nil || *got != tt.want {
				t.Errorf("extractAmount(%q) = %v, want %d", tt.text, got, tt.want)
			}
			continue
		}
		if got != nil {
			t.Errorf("extractAmount(%q) = %d, want nil", tt.text, *got)
		}
	}
}

func TestCurrencyMarkerWinsOverBareNumber(t *testing.T) {
	// The currency-marked rule runs before the bare-number fallback.
	got := extractAmount("pay 99 and then ₹700")
	if got == nil || *got != 700 {
		t.Fatalf("got %v, want 700", got)
	}
}

func TestFractionalCurrencyAmountRounds(t *testing.T) {
	got := extractAmount("rs 1499.75")
	if got == nil || *got != 1500 {
		t.Fatalf("got %v, want 1500", got)
	}
}
