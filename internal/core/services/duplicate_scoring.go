package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DuplicateWindow tunes which prior transactions count as possible duplicates.
type DuplicateWindow struct {
	AmountTolerance decimal.Decimal
	Days            int
	LookbackDays    int
}

// DefaultDuplicateWindow matches within 50 cents and a week, over the last 30 days.
func DefaultDuplicateWindow() DuplicateWindow {
	return DuplicateWindow{
		AmountTolerance: decimal.RequireFromString("0.50"),
		Days:            7,
		LookbackDays:    30,
	}
}

const (
	minSharedWordLength = 4
	scorePerDollarDiff  = 20
	scorePerDayApart    = 5
	exactMerchantBonus  = 10
	maxDuplicateScore   = 100
)

// MerchantsMatch compares merchant names: equal, one containing the other, or
// sharing enough words longer than three letters.
func MerchantsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	searchWords := significantWords(a)
	if len(searchWords) == 0 {
		return false
	}
	candidate := make(map[string]bool)
	for _, w := range significantWords(b) {
		candidate[w] = true
	}
	common := 0
	for _, w := range searchWords {
		if candidate[w] {
			common++
		}
	}
	need := (len(searchWords) + 1) / 2
	if need > 2 {
		need = 2
	}
	return common >= need
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) >= minSharedWordLength {
			out = append(out, w)
		}
	}
	return out
}

// ScoreDuplicate rates how likely candidate repeats the (merchant, amount, date)
// being entered, from 0 to 100.
func ScoreDuplicate(merchant string, amount decimal.Decimal, date time.Time, candidate domain.StoredTransaction) float64 {
	amountDiff, _ := amount.Abs().Sub(candidate.Amount.Abs()).Abs().Float64()
	days := daysBetween(date, candidate.Date)
	score := maxDuplicateScore - scorePerDollarDiff*amountDiff - float64(scorePerDayApart*days)
	if strings.EqualFold(strings.TrimSpace(merchant), strings.TrimSpace(candidate.Merchant)) {
		score += exactMerchantBonus
	}
	return math.Max(0, math.Min(maxDuplicateScore, score))
}

// BestDuplicate filters candidates to the window and returns the highest-scoring match.
func (w DuplicateWindow) BestDuplicate(merchant string, amount decimal.Decimal, date time.Time, candidates []domain.StoredTransaction) *domain.DuplicateMatch {
	var matches []domain.DuplicateMatch
	for _, c := range candidates {
		if amount.Abs().Sub(c.Amount.Abs()).Abs().GreaterThan(w.AmountTolerance) {
			continue
		}
		days := daysBetween(date, c.Date)
		if days > w.Days {
			continue
		}
		if !MerchantsMatch(merchant, c.Merchant) && !MerchantsMatch(merchant, c.Description) {
			continue
		}
		matches = append(matches, domain.DuplicateMatch{
			TransactionID: c.TransactionID,
			Amount:        c.Amount,
			Merchant:      c.Merchant,
			Date:          c.Date,
			DaysAgo:       days,
			MatchScore:    ScoreDuplicate(merchant, amount, date, c),
		})
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return &matches[0]
}

// LookbackStart is the earliest date worth loading for a duplicate check on date.
func (w DuplicateWindow) LookbackStart(date time.Time) time.Time {
	return domain.CalendarDate(date).AddDate(0, 0, -w.LookbackDays)
}

func daysBetween(a, b time.Time) int {
	d := domain.CalendarDate(a).Sub(domain.CalendarDate(b))
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
