package geohash

import (
	"errors"
	"strconv"
	"strings"
)

// ErrorSentinel is the value emitted in place of a geohash when the
// coordinate text cannot be parsed as numbers.
const ErrorSentinel = "error"

// TextResult is the outcome of EncodeText. Parsed is false when either input
// was not a number; in that case Hash is empty and the encoder was not run.
type TextResult struct {
	Hash   string
	Parsed bool
}

// String returns the hash, or ErrorSentinel for an unparsed result.
func (r TextResult) String() string {
	if !r.Parsed {
		return ErrorSentinel
	}
	return r.Hash
}

// EncodeTextDefault is EncodeText with DefaultPrecision.
func EncodeTextDefault(latText, lonText string) (TextResult, error) {
	return EncodeText(latText, lonText, DefaultPrecision)
}

// EncodeText parses latitude and longitude text and encodes them.
//
// Unparseable text is absorbed into an unparsed TextResult with a nil error.
// Range and precision failures from Encode are returned unchanged.
func EncodeText(latText, lonText string, precision int) (TextResult, error) {
	lat, ok := parseCoordinate(latText)
	if !ok {
		return TextResult{}, nil
	}
	lon, ok := parseCoordinate(lonText)
	if !ok {
		return TextResult{}, nil
	}

	hash, err := Encode(lat, lon, precision)
	if err != nil {
		return TextResult{}, err
	}
	return TextResult{Hash: hash, Parsed: true}, nil
}

// parseCoordinate accepts anything strconv.ParseFloat does after trimming
// whitespace. Literals too large for float64 come back as ±Inf and are left
// for Encode to reject as out of range.
func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}
