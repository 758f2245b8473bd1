// Package dialog drives the promise-to-pay negotiation as a finite
// state machine. NextTurn is a pure function of its request: the caller
// owns persistence of the returned state and entity memory.
package dialog

import (
	"strings"
	"time"

	"github.com/riverline/collections-platform/internal/nlu"
)

// State is a dialogue stage. Transitions run forward through
// CONTACT→VERIFY→INTENT→PLAN→RESOLVE except for self-loops when
// required input is missing; END is reached only through the abuse
// interrupt handled upstream of this machine.
type State string

const (
	StateContact State = "CONTACT"
	StateVerify  State = "VERIFY"
	StateIntent  State = "INTENT"
	StatePlan    State = "PLAN"
	StateResolve State = "RESOLVE"
	StateEnd     State = "END"
)

// Action is a side effect the caller must interpret; the machine itself
// never touches storage.
type Action string

const (
	ActionNone             Action = ""
	ActionPTPPreview       Action = "PTP_PREVIEW"
	ActionCreatePTP        Action = "CREATE_PTP"
	ActionScheduleCallback Action = "SCHEDULE_CALLBACK"
)

// Tone is the agent's register, independent of dialogue state.
type Tone string

const (
	ToneNeutral    Tone = "neutral"
	ToneEmpathetic Tone = "empathetic"
	ToneUrgent     Tone = "urgent"
)

// BorrowerContext is the slice of the borrower snapshot the machine
// needs to phrase a turn.
type BorrowerContext struct {
	Name      string
	Language  string
	AmountDue int64
}

// TurnRequest is everything a single turn depends on.
type TurnRequest struct {
	State    State
	Borrower BorrowerContext
	Text     string
	Tone     Tone
	Memory   nlu.Entities
	Now      time.Time
}

// TurnResult is what the caller persists and speaks.
type TurnResult struct {
	NextState State
	Reply     string
	Action    Action
	Entities  nlu.Entities
}

// Machine evaluates dialogue turns against an immutable message catalog.
type Machine struct {
	catalog Catalog
}

// NewMachine builds a machine with the default catalog.
func NewMachine() *Machine {
	return &Machine{catalog: DefaultCatalog()}
}

// NextTurn interprets the borrower's text and advances the dialogue.
func (m *Machine) NextTurn(req TurnRequest) TurnResult {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	interp := nlu.InterpretAt(req.Text, req.Borrower.Language, req.Now)

	lang := req.Borrower.Language
	if lang == "" {
		lang = "en"
	}
	firstName := req.Borrower.Name
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}
	due := req.Borrower.AmountDue

	// Memory only grows: a freshly interpreted slot wins, otherwise the
	// remembered value carries forward.
	entities := nlu.Entities{
		Amount:  coalesceAmount(interp.Entities.Amount, req.Memory.Amount),
		DueDate: coalesceDate(interp.Entities.DueDate, req.Memory.DueDate),
	}

	say := func(key messageKey, a templateArgs) string {
		a.Name = firstName
		a.Due = due
		return m.catalog.render(key, lang, req.Tone, interp.Sentiment, a)
	}

	switch req.State {
	case StateContact:
		return TurnResult{
			NextState: StateVerify,
			Reply:     say(msgVerify, templateArgs{}),
			Entities:  entities,
		}

	case StateVerify:
		switch interp.Intent {
		case nlu.IntentConfirm, nlu.IntentConsent, nlu.IntentGreet:
			return TurnResult{
				NextState: StateIntent,
				Reply:     say(msgThanksAndAsk, templateArgs{}),
				Entities:  entities,
			}
		}
		return TurnResult{
			NextState: StateVerify,
			Reply:     say(msgVerifyFail, templateArgs{}),
			Entities:  entities,
		}

	case StateIntent:
		switch interp.Intent {
		case nlu.IntentAskDue:
			return TurnResult{
				NextState: StateIntent,
				Reply:     say(msgAskDue, templateArgs{}),
				Entities:  entities,
			}

		case nlu.IntentPTP, nlu.IntentPay, nlu.IntentPayLater:
			amount := due
			if entities.Amount != nil {
				amount = *entities.Amount
			}
			if entities.DueDate != nil {
				committed := nlu.Entities{Amount: &amount, DueDate: entities.DueDate}
				return TurnResult{
					NextState: StatePlan,
					Reply:     say(msgPreviewPTP, templateArgs{Amount: amount, Date: formatDate(*entities.DueDate)}),
					Action:    ActionPTPPreview,
					Entities:  committed,
				}
			}
			return TurnResult{
				NextState: StateIntent,
				Reply:     say(msgAskPlan, templateArgs{}),
				Entities:  entities,
			}

		case nlu.IntentHardship, nlu.IntentCantPay:
			return TurnResult{
				NextState: StatePlan,
				Reply:     say(msgHardshipPlan, templateArgs{}),
				Entities:  entities,
			}

		case nlu.IntentCallback:
			return TurnResult{
				NextState: StateResolve,
				Reply:     say(msgCallback, templateArgs{}),
				Action:    ActionScheduleCallback,
				Entities:  entities,
			}
		}
		return TurnResult{
			NextState: StateIntent,
			Reply:     say(msgAskAgain, templateArgs{}),
			Entities:  entities,
		}

	case StatePlan:
		switch interp.Intent {
		case nlu.IntentConfirm, nlu.IntentPTP:
			if entities.DueDate == nil {
				return TurnResult{
					NextState: StatePlan,
					Reply:     say(msgPlanMissingDate, templateArgs{}),
					Entities:  entities,
				}
			}
			amount := due
			if entities.Amount != nil {
				amount = *entities.Amount
			}
			dueDate := defaultDueDate(entities.DueDate, req.Now)
			committed := nlu.Entities{Amount: &amount, DueDate: &dueDate}
			return TurnResult{
				NextState: StateResolve,
				Reply:     say(msgConfirmPTP, templateArgs{Amount: amount, Date: formatDate(dueDate)}),
				Action:    ActionCreatePTP,
				Entities:  committed,
			}

		case nlu.IntentAskDue:
			return TurnResult{
				NextState: StatePlan,
				Reply:     say(msgAskDue, templateArgs{}),
				Entities:  entities,
			}

		case nlu.IntentCallback:
			return TurnResult{
				NextState: StateResolve,
				Reply:     say(msgCallback, templateArgs{}),
				Action:    ActionScheduleCallback,
				Entities:  entities,
			}

		case nlu.IntentHardship:
			return TurnResult{
				NextState: StatePlan,
				Reply:     say(msgHardshipPlan, templateArgs{}),
				Entities:  entities,
			}
		}
		return TurnResult{
			NextState: StatePlan,
			Reply:     say(msgPlanAgain, templateArgs{}),
			Entities:  entities,
		}
	}

	// RESOLVE/END: nothing left to negotiate, only a closing line.
	return TurnResult{
		NextState: StateResolve,
		Reply:     say(msgClosing, templateArgs{}),
		Entities:  entities,
	}
}

// defaultDueDate keeps the legacy +3 day fallback. The missing-date
// guard before the CREATE_PTP branch means the fallback cannot fire
// under the current transition table; it is retained rather than
// removed in case an intent path that skips the guard reappears.
func defaultDueDate(d *time.Time, now time.Time) time.Time {
	if d == nil {
		return now.AddDate(0, 0, 3)
	}
	return *d
}

func coalesceAmount(fresh, remembered *int64) *int64 {
	if fresh != nil {
		return fresh
	}
	return remembered
}

func coalesceDate(fresh, remembered *time.Time) *time.Time {
	if fresh != nil {
		return fresh
	}
	return remembered
}

// formatDate renders dates the way the agent speaks them (dd/mm/yyyy).
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
