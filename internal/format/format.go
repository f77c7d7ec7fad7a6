// Package format renders portfolio numbers for display. All functions are
// pure and total: non-finite input degrades to a safe placeholder instead of
// panicking, since provider data reaches the UI unvalidated.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "Jan 2, 2006"
	timestampLayout = "Jan 2, 2006 3:04:05 PM"
)

// Currency renders a USD amount with two decimals and thousands grouping,
// e.g. 34567.89 -> "$34,567.89". Non-finite input renders as "$0.00".
func Currency(v float64) string {
	if !isFinite(v) {
		return "$0.00"
	}
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return "-$" + group(d.Neg().StringFixed(2))
	}
	return "$" + group(d.StringFixed(2))
}

// SignedPercent renders a percentage-as-number with an explicit sign,
// e.g. 2.5 -> "+2.50%". Non-finite input renders as "-", the UI's
// placeholder for an unknown change.
func SignedPercent(v float64) string {
	if !isFinite(v) {
		return "-"
	}
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// Quantity renders a position size: two decimals for quantities at or above
// 0.1 in magnitude, six for dust-sized ones. Non-finite input renders as "0".
func Quantity(v float64) string {
	if !isFinite(v) {
		return "0"
	}
	d := decimal.NewFromFloat(v)
	if math.Abs(v) >= 0.1 {
		return d.StringFixed(2)
	}
	return d.StringFixed(6)
}

// DateMillis renders an epoch-milliseconds timestamp as a calendar date.
// Non-finite or non-positive input renders as the empty string.
func DateMillis(ms float64) string {
	if !isFinite(ms) || ms <= 0 {
		return ""
	}
	return time.UnixMilli(int64(ms)).UTC().Format(dateLayout)
}

// Timestamp renders a wall-clock time for the snapshot's last_updated field.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// group inserts thousands separators into the integer part of a fixed-point
// decimal string such as "34567.89".
func group(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		if frac == "" {
			return intPart
		}
		return intPart + "." + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
