package conversation

import (
	"context"
	"errors"

	"github.com/riverline/collections-platform/internal/compliance"
	"github.com/riverline/collections-platform/internal/dialog"
	"github.com/riverline/collections-platform/internal/messaging"
)

// voiceLockedText refuses calls on accounts already in safe mode or
// under legal escalation. Always English, like safetyResponse.
const voiceLockedText = "This account is locked and cannot be serviced on this call. Please contact support."

// VoiceRequest is the subset of Twilio's voice webhook form the flow
// reads.
type VoiceRequest struct {
	CallSid      string
	From         string
	To           string
	SpeechResult string
	// GatherAction is the webhook path speech results post back to.
	GatherAction string
}

// VoiceTurn handles one leg of a phone call: the opening greeting when
// the borrower has not spoken yet, a full dialogue turn when they have.
// The returned string is TwiML.
func (s *Service) VoiceTurn(ctx context.Context, req VoiceRequest) (string, error) {
	phone := messaging.StripChannelPrefix(req.From)
	b, err := s.borrowers.GetByPhone(ctx, phone)
	if err != nil {
		s.logger.Error("voice webhook: borrower lookup failed", "error", err, "from", req.From)
		return voiceUnknown(), nil
	}
	if b.Locked() {
		s.logger.Warn("voice webhook: refused locked borrower",
			"borrower_id", b.ID,
			"call_sid", req.CallSid,
		)
		return voiceReply(voiceLockedText, "en", req.GatherAction, true)
	}

	now := s.now()

	conv, err := s.store.FindByCallSid(ctx, req.CallSid)
	if errors.Is(err, ErrConversationNotFound) {
		conv = &Conversation{
			BorrowerID: b.ID,
			Channel:    ChannelVoice,
			State:      dialog.StateContact,
			Tone:       dialog.ToneNeutral,
			CallSid:    req.CallSid,
		}
		conv.addAudit(AuditCallStart, map[string]any{
			"call_sid": req.CallSid,
			"from":     req.From,
			"to":       req.To,
		}, now)
		if err := s.store.Create(ctx, conv); err != nil {
			return voiceError(), err
		}
	} else if err != nil {
		return voiceError(), err
	}

	var reply string
	if req.SpeechResult != "" {
		conv.addTurn(RoleBorrower, req.SpeechResult, b.Language, now)

		// Abuse interrupt fires before the dialogue machine on every
		// channel, whatever state the call is in.
		if compliance.DetectAbuse(req.SpeechResult) {
			conv.addAudit(AuditCallEnd, map[string]any{"call_sid": req.CallSid}, now)
			if _, err := s.lockForAbuse(ctx, conv, b, req.SpeechResult, now); err != nil {
				return voiceError(), err
			}
			return voiceReply(safetyResponse, "en", req.GatherAction, true)
		}

		result := s.machine.NextTurn(dialog.TurnRequest{
			State:    conv.State,
			Borrower: borrowerContext(b),
			Text:     req.SpeechResult,
			Tone:     conv.Tone,
			Memory:   conv.Entities,
			Now:      now,
		})
		conv.State = result.NextState
		conv.Entities = result.Entities
		reply = result.Reply
		conv.addTurn(RoleAgent, reply, b.Language, now)

		if result.Action == dialog.ActionCreatePTP {
			if err := s.createPromise(ctx, conv, b, now, req.CallSid); err != nil {
				return voiceError(), err
			}
		}
	} else {
		result := s.machine.NextTurn(dialog.TurnRequest{
			State:    dialog.StateContact,
			Borrower: borrowerContext(b),
			Text:     "",
			Tone:     conv.Tone,
			Now:      now,
		})
		conv.State = result.NextState
		reply = result.Reply
		conv.addTurn(RoleAgent, reply, b.Language, now)
	}

	done := conv.Closed()
	if done {
		conv.addAudit(AuditCallEnd, map[string]any{"call_sid": req.CallSid}, now)
	}
	if err := s.store.Update(ctx, conv); err != nil {
		return voiceError(), err
	}
	s.notifyListener(conv)

	return voiceReply(reply, b.Language, req.GatherAction, done)
}
