// Package messaging wraps outbound borrower contact: WhatsApp
// notifications and outbound voice calls, both through Twilio.
package messaging

import (
	"context"
	"strings"
)

// Sender is the outbound contact surface the rest of the platform
// depends on.
type Sender interface {
	SendWhatsApp(ctx context.Context, to, body string) (sid string, err error)
	StartCall(ctx context.Context, to, webhookURL string) (sid string, err error)
}

// FormatE164 upgrades a bare 10-digit Indian number to E.164. Numbers
// already carrying a plus pass through untouched.
func FormatE164(phone string) string {
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+91" + phone
}

// FormatWhatsApp renders a number in Twilio's whatsapp: addressing.
func FormatWhatsApp(phone string) string {
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + FormatE164(phone)
}

// StripChannelPrefix reverses webhook addressing back to the 10-digit
// form borrower records are keyed by.
func StripChannelPrefix(phone string) string {
	phone = strings.TrimPrefix(phone, "whatsapp:")
	return strings.TrimPrefix(phone, "+91")
}
