package ocr

import (
	"regexp"
	"strings"

	"moodledger/internal/core"
)

// PlaceholderDescription is used when OCR yields no text at all.
const PlaceholderDescription = "Bill Scan"

// Fields is the best-effort result of parsing raw OCR text. A zero Amount
// means no amount was found; that is degraded data, not a failure.
type Fields struct {
	Description string
	Amount      core.Money
}

// FieldParser derives transaction fields from raw OCR text. Swapping the
// parsing strategy must not touch the intake pipeline.
type FieldParser interface {
	ParseFields(text string) Fields
}

// amountPattern matches the first numeric literal, optionally prefixed by
// a currency marker. Both comma and dot separators are accepted.
var amountPattern = regexp.MustCompile(`(?:₹|\$|€|£|Rp|IDR)?\s?([0-9]+(?:[.,][0-9]+)?)`)

// RegexFields is the default parsing strategy: first matching number for
// the amount, first non-empty line for the description. The description
// keeps the amount when both sit on the same line; callers correct the
// record afterwards if needed.
type RegexFields struct{}

func (RegexFields) ParseFields(text string) Fields {
	f := Fields{Description: PlaceholderDescription}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			f.Description = trimmed
			break
		}
	}
	if m := amountPattern.FindStringSubmatch(text); len(m) > 1 {
		f.Amount = core.Money{Cents: centsFromToken(m[1])}
	}
	return f
}

// centsFromToken converts a matched numeric token to cents. A comma
// followed by a group of three digits is thousands grouping ("1,500");
// any other comma is a decimal separator ("45,50").
func centsFromToken(token string) int64 {
	if i := strings.IndexAny(token, ".,"); i >= 0 {
		frac := token[i+1:]
		if token[i] == ',' && len(frac) == 3 {
			token = token[:i] + frac
		} else {
			token = token[:i] + "." + frac
		}
	}
	cents, err := core.ParseDecimalToCents(token)
	if err != nil {
		return 0
	}
	return cents
}
