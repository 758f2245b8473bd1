package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+919876500001", FormatE164("9876500001"))
	assert.Equal(t, "+14155550100", FormatE164("+14155550100"))
	assert.Equal(t, "", FormatE164(""))
}

func TestFormatWhatsApp(t *testing.T) {
	assert.Equal(t, "whatsapp:+919876500001", FormatWhatsApp("9876500001"))
	assert.Equal(t, "whatsapp:+919876500001", FormatWhatsApp("+919876500001"))
	assert.Equal(t, "whatsapp:+919876500001", FormatWhatsApp("whatsapp:+919876500001"))
	assert.Equal(t, "", FormatWhatsApp(""))
}

func TestStripChannelPrefix(t *testing.T) {
	assert.Equal(t, "9876500001", StripChannelPrefix("whatsapp:+919876500001"))
	assert.Equal(t, "9876500001", StripChannelPrefix("+919876500001"))
	assert.Equal(t, "9876500001", StripChannelPrefix("9876500001"))
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	_, err := NewTwilioSender("", "", "whatsapp:+14155238886", "+14155550100", nil)
	require.Error(t, err)
}

func TestFakeSenderRecords(t *testing.T) {
	fake := NewFakeSender()

	sid, err := fake.SendWhatsApp(context.Background(), "9876500001", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	require.Len(t, fake.Messages, 1)
	assert.Equal(t, "hello", fake.Messages[0].Body)

	_, err = fake.StartCall(context.Background(), "9876500001", "https://example.com/voice")
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "https://example.com/voice", fake.Calls[0].WebhookURL)
}

func TestFakeSenderPropagatesError(t *testing.T) {
	fake := NewFakeSender()
	fake.Err = errors.New("network down")

	_, err := fake.SendWhatsApp(context.Background(), "9876500001", "hello")
	require.Error(t, err)
	assert.Empty(t, fake.Messages)
}
