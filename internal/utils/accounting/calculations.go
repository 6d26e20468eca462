package accounting

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TotalsMatchThreshold is the tolerance under which an itemized total and a transaction total agree.
var TotalsMatchThreshold = decimal.New(1, -2)

var (
	ErrEntryMinLines  = errors.New("entry must have at least two journal lines")
	ErrEntryUnbalance = errors.New("journal lines do not balance")
)

// amountPattern accepts plain non-negative decimal text with at most two
// fraction digits and fifteen integer digits, matching NUMERIC(19,4) storage.
var amountPattern = regexp.MustCompile(`^(\d{1,15}(\.\d{0,2})?|\.\d{1,2})$`)

func parseAmount(text string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if !amountPattern.MatchString(cleaned) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount parses user-entered amount text. It never fails: empty,
// malformed and negative input all yield zero, as do exponents and more
// than two decimals. A leading currency symbol and thousands separators are
// tolerated.
func ParseAmount(text string) decimal.Decimal {
	d, _ := parseAmount(text)
	return d
}

// IsValidAmount reports whether the text parses to an amount greater than zero.
func IsValidAmount(text string) bool {
	return ParseAmount(text).GreaterThan(decimal.Zero)
}

// IsWellFormedAmount reports whether the text is a parsable amount, zero included.
func IsWellFormedAmount(text string) bool {
	_, ok := parseAmount(text)
	return ok
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// LineItemsTotal sums amount+tax+tip over all items. Unparsable values count as zero.
func LineItemsTotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(ParseAmount(item.Amount)).
			Add(ParseAmount(item.Tax)).
			Add(ParseAmount(item.Tip))
	}
	return sum
}

// TotalsMatch reports whether the two totals differ by less than one cent.
func TotalsMatch(itemizedTotal, transactionTotal decimal.Decimal) bool {
	return TotalsDifference(itemizedTotal, transactionTotal).LessThan(TotalsMatchThreshold)
}

// TotalsDifference is the absolute difference between the two totals. It is
// for display and tracking only, never for correcting either side.
func TotalsDifference(itemizedTotal, transactionTotal decimal.Decimal) decimal.Decimal {
	return itemizedTotal.Sub(transactionTotal).Abs()
}

// SplitEvenly divides total into n parts rounded to cents. The last part
// absorbs the remainder so the parts always sum to total exactly.
func SplitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	parts := make([]decimal.Decimal, n)
	base := total.DivRound(decimal.NewFromInt(int64(n)), 2)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = base
		allocated = allocated.Add(base)
	}
	parts[n-1] = total.Sub(allocated)
	return parts
}

// SignedAmount applies the direction sign: expenses are negative, income positive.
func SignedAmount(amount decimal.Decimal, direction domain.Direction) decimal.Decimal {
	if direction == domain.DirectionExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// ValidateEntryBalance checks that journal lines are positive and that debits equal credits.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return ErrEntryMinLines
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("journal line amount must be positive for account %s", line.AccountID)
		}
		if line.TransactionType == domain.Debit {
			debitsSum = debitsSum.Add(line.Amount)
		} else {
			creditsSum = creditsSum.Add(line.Amount)
		}
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s", ErrEntryUnbalance, debitsSum.String(), creditsSum.String())
	}
	return nil
}
