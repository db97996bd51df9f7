package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Statement exports write dates as year/month/day. The unpadded layout
// accepts both "2024/01/15" and "2024/1/5".
const dateLayout = "2006/1/2"

// NormalizeText folds full-width characters to their compatibility forms
// and trims surrounding whitespace. Katakana and kanji pass through
// unchanged.
func NormalizeText(value string) string {
	return strings.TrimSpace(norm.NFKC.String(value))
}

// ParseAmount reads a statement money or count cell. Exports format these
// with thousands separators, currency symbols, and sometimes full-width
// digits, so the cell is compatibility-folded and every character except
// digits and the minus sign is stripped before parsing.
func ParseAmount(value string) (int, error) {
	folded := norm.NFKC.String(value)
	var digits strings.Builder
	for _, r := range folded {
		if (r >= '0' && r <= '9') || r == '-' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if cleaned == "" {
		return 0, fmt.Errorf("amount %q has no digits", value)
	}
	amount, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number: %w", value, err)
	}
	return amount, nil
}

// ParseDate reads a statement usage date cell.
func ParseDate(value string) (time.Time, error) {
	cleaned := strings.TrimSpace(norm.NFKC.String(value))
	parsed, err := time.Parse(dateLayout, cleaned)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not year/month/day: %w", value, err)
	}
	return parsed, nil
}

// IsCardMarker reports whether a row announces the card number for the
// rows that follow. Marker rows carry a masked card number such as
// "1234-56**-****-7890" in the second column.
func IsCardMarker(fields []string) bool {
	if len(fields) < 2 {
		return false
	}
	cell := fields[1]
	return cell != "" && strings.Contains(cell, "-") && strings.Contains(cell, "*")
}
