package messaging

import (
	"context"
	"fmt"
	"sync"
)

// FakeSender records every message and call for assertions in tests.
// It is also usable as a local no-Twilio stand-in.
type FakeSender struct {
	mu       sync.Mutex
	Messages []FakeMessage
	Calls    []FakeCall
	Err      error
}

type FakeMessage struct {
	To   string
	Body string
}

type FakeCall struct {
	To         string
	WebhookURL string
}

func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

func (f *FakeSender) SendWhatsApp(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Messages = append(f.Messages, FakeMessage{To: to, Body: body})
	return fmt.Sprintf("SM-fake-%d", len(f.Messages)), nil
}

func (f *FakeSender) StartCall(_ context.Context, to, webhookURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Calls = append(f.Calls, FakeCall{To: to, WebhookURL: webhookURL})
	return fmt.Sprintf("CA-fake-%d", len(f.Calls)), nil
}
