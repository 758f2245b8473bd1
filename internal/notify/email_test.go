package notify

import (
	"context"
	"testing"
)

func TestSendGridSenderRequiresAPIKey(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{FromEmail: "reports@riverline.example.com"}, nil); s != nil {
		t.Fatal("expected nil sender without an api key")
	}
}

func TestSendGridSenderFromName(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		want string
	}{
		{"default", "", "Riverline Collections"},
		{"custom", "Recovery Desk", "Recovery Desk"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSendGridSender(SendGridConfig{
				APIKey:    "sg-test-key",
				FromEmail: "reports@riverline.example.com",
				FromName:  tt.in,
			}, nil)
			if s == nil {
				t.Fatal("expected sender")
			}
			if got := s.from.Name; got != tt.want {
				t.Fatalf("from name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendGridSenderUnconfiguredErrors(t *testing.T) {
	err := (&SendGridSender{}).Send(context.Background(), Message{
		To:      "supervisor@riverline.example.com",
		Subject: "Collections EOD report",
		Body:    "totals",
	})
	if err == nil {
		t.Fatal("expected error from unconfigured sender")
	}
}

func TestSESSenderRequiresClient(t *testing.T) {
	if s := NewSESSender(nil, SESConfig{FromEmail: "reports@riverline.example.com"}, nil); s != nil {
		t.Fatal("expected nil sender without a client")
	}
}

func TestStubSenderSwallowsMail(t *testing.T) {
	err := NewStubSender(nil).Send(context.Background(), Message{
		To:      "supervisor@riverline.example.com",
		Subject: "Collections EOD report",
		Body:    "totals",
	})
	if err != nil {
		t.Fatalf("stub sender returned error: %v", err)
	}
}
