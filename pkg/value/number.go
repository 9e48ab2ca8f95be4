package value

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var jsonNumberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// IsJSONNumber reports whether text is spelled as a JSON number.
func IsJSONNumber(text string) bool {
	return jsonNumberPattern.MatchString(text)
}

// FormatNumber renders f the way JavaScript's Number#toString does: plain
// decimal notation for magnitudes in [1e-6, 1e21) and shortest round-trip
// exponent notation otherwise. Negative zero renders as "0".
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// ParseNumber converts JSON number text into a Value. Text that a float64
// reproduces exactly under FormatNumber becomes a KindNumber; anything else
// (extra precision, trailing zeros, exponent spelling) is kept verbatim as a
// KindLossless so the original digits survive rendering.
func ParseNumber(text string) Value {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Lossless(text)
	}
	if FormatNumber(f) != text {
		return Lossless(text)
	}
	return Number(f)
}
