package ops

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/riverline/collections-platform/internal/notify"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/internal/settlements"
)

// Totals are the portfolio-wide activity counters.
type Totals struct {
	Borrowers      int   `json:"borrowers"`
	Conversations  int   `json:"conversations"`
	PTPCreated     int   `json:"ptp_created"`
	PTPKept        int   `json:"ptp_kept"`
	PTPBroken      int   `json:"ptp_broken"`
	Offers         int   `json:"offers"`
	OffersAccepted int   `json:"offers_accepted"`
	PromisedAmount int64 `json:"promised_amount,omitempty"`
	AcceptedAmount int64 `json:"accepted_amount,omitempty"`
}

// DashboardReport is the all-time recovery dashboard.
type DashboardReport struct {
	Totals   Totals         `json:"totals"`
	ByRisk   map[string]int `json:"byRisk"`
	Outcomes map[string]int `json:"outcomes"`
}

// Dashboard aggregates portfolio state across every store.
func (s *Service) Dashboard(ctx context.Context) (*DashboardReport, error) {
	borrowerList, err := s.borrowers.List(ctx)
	if err != nil {
		return nil, err
	}
	ptps, err := s.promises.List(ctx)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, err
	}
	convs, err := s.convs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &DashboardReport{
		ByRisk:   map[string]int{"low": 0, "medium": 0, "high": 0},
		Outcomes: map[string]int{},
	}
	report.Totals.Borrowers = len(borrowerList)
	report.Totals.Conversations = len(convs)
	report.Totals.PTPCreated = len(ptps)
	report.Totals.Offers = len(offers)

	for _, p := range ptps {
		report.Totals.PromisedAmount += p.Amount
		switch p.Status {
		case promises.StatusKept:
			report.Totals.PTPKept++
		case promises.StatusBroken:
			report.Totals.PTPBroken++
		}
	}
	for _, o := range offers {
		if o.Status == settlements.StatusAccepted {
			report.Totals.OffersAccepted++
			report.Totals.AcceptedAmount += o.OfferedAmount
		}
	}
	for _, b := range borrowerList {
		risk := b.RiskLevel
		if risk == "" {
			risk = "low"
		}
		report.ByRisk[risk]++
	}
	for _, c := range convs {
		if c.Outcome != "" {
			report.Outcomes[c.Outcome]++
		}
	}
	return report, nil
}

// AgentStats is one leaderboard row. The fleet currently has a single
// AI agent; the shape leaves room for more.
type AgentStats struct {
	Agent     string `json:"agent"`
	Calls     int    `json:"calls"`
	Connected int    `json:"connected"`
	PTP       int    `json:"ptp"`
	Kept      int    `json:"kept"`
	KeptRate  int    `json:"kept_rate"`
}

// Leaderboard summarizes agent performance.
func (s *Service) Leaderboard(ctx context.Context) ([]AgentStats, error) {
	convs, err := s.convs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ptps, err := s.promises.List(ctx)
	if err != nil {
		return nil, err
	}

	row := AgentStats{Agent: "AI-Agent-001", Calls: len(convs), PTP: len(ptps)}
	for _, c := range convs {
		if c.Outcome == "connected" {
			row.Connected++
		}
	}
	for _, p := range ptps {
		if p.Status == promises.StatusKept {
			row.Kept++
		}
	}
	if row.PTP > 0 {
		row.KeptRate = int(math.Round(100 * float64(row.Kept) / float64(row.PTP)))
	}
	return []AgentStats{row}, nil
}

// Conversion are the day's funnel rates as whole percentages.
type Conversion struct {
	PTPKeepRate     int `json:"ptp_keep_rate"`
	OfferAcceptRate int `json:"offer_accept_rate"`
}

// EODReport is the end-of-day summary.
type EODReport struct {
	Date       time.Time  `json:"date"`
	Totals     Totals     `json:"totals"`
	Conversion Conversion `json:"conversion"`
}

// EndOfDayReport counts today's activity: sessions and promises created
// today, promise and offer transitions that happened today.
func (s *Service) EndOfDayReport(ctx context.Context) (*EODReport, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	today := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	borrowerList, err := s.borrowers.List(ctx)
	if err != nil {
		return nil, err
	}
	ptps, err := s.promises.List(ctx)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, err
	}
	convs, err := s.convs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &EODReport{Date: now}
	report.Totals.Borrowers = len(borrowerList)
	for _, c := range convs {
		if today(c.CreatedAt) {
			report.Totals.Conversations++
		}
	}
	for _, p := range ptps {
		if today(p.CreatedAt) {
			report.Totals.PTPCreated++
		}
		if p.Status == promises.StatusKept && today(p.UpdatedAt) {
			report.Totals.PTPKept++
		}
		if p.Status == promises.StatusBroken && today(p.UpdatedAt) {
			report.Totals.PTPBroken++
		}
	}
	for _, o := range offers {
		if today(o.CreatedAt) {
			report.Totals.Offers++
		}
		if o.Status == settlements.StatusAccepted && today(o.UpdatedAt) {
			report.Totals.OffersAccepted++
		}
	}

	if report.Totals.PTPCreated > 0 {
		report.Conversion.PTPKeepRate = int(math.Round(100 * float64(report.Totals.PTPKept) / float64(report.Totals.PTPCreated)))
	}
	if report.Totals.Offers > 0 {
		report.Conversion.OfferAcceptRate = int(math.Round(100 * float64(report.Totals.OffersAccepted) / float64(report.Totals.Offers)))
	}
	return report, nil
}

// EmailEndOfDayReport renders the EOD report and mails it to the
// supervisor address.
func (s *Service) EmailEndOfDayReport(ctx context.Context, sender notify.Sender, to string) (*EODReport, error) {
	report, err := s.EndOfDayReport(ctx)
	if err != nil {
		return nil, err
	}
	if sender == nil || to == "" {
		return report, nil
	}

	body := renderEODEmail(report)
	if err := sender.Send(ctx, notify.Message{
		To:      to,
		Subject: fmt.Sprintf("Collections EOD report — %s", report.Date.Format("02 Jan 2006")),
		Body:    body,
	}); err != nil {
		return report, err
	}
	s.logger.Info("eod report emailed", "to", to)
	return report, nil
}

func renderEODEmail(r *EODReport) string {
	lines := []string{
		fmt.Sprintf("End of day report for %s", r.Date.Format("02 Jan 2006")),
		"",
		fmt.Sprintf("Borrowers on book: %d", r.Totals.Borrowers),
		fmt.Sprintf("Conversations today: %d", r.Totals.Conversations),
		fmt.Sprintf("Promises created: %d", r.Totals.PTPCreated),
		fmt.Sprintf("Promises kept: %d", r.Totals.PTPKept),
		fmt.Sprintf("Promises broken: %d", r.Totals.PTPBroken),
		fmt.Sprintf("Offers made: %d", r.Totals.Offers),
		fmt.Sprintf("Offers accepted: %d", r.Totals.OffersAccepted),
		"",
		fmt.Sprintf("PTP keep rate: %d%%", r.Conversion.PTPKeepRate),
		fmt.Sprintf("Offer accept rate: %d%%", r.Conversion.OfferAcceptRate),
	}
	return strings.Join(lines, "\n")
}
