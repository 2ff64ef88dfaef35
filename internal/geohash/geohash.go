// Package geohash encodes latitude/longitude pairs into base-32 geohash strings.
//
// A geohash is built by bisecting the longitude range [-180, 180) and the
// latitude range [-90, 90) alternately, longitude first, and packing the
// resulting bit stream into 5-bit symbols of the alphabet
// "0123456789bcdefghjkmnpqrstuvwxyz".
//
// The text of RangeError and PrecisionError is stable; downstream consumers
// match on it.
package geohash

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Alphabet is the geohash base-32 symbol set. It omits a, i, l and o.
	Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

	// MaxPrecision is the longest geohash Encode produces.
	MaxPrecision = 12

	// DefaultPrecision is used by EncodeTextDefault.
	DefaultPrecision = 4

	bitsPerChar = 5
)

var (
	// ErrOutOfRange matches any *RangeError via errors.Is.
	ErrOutOfRange = errors.New("geohash: coordinates out of range")

	// ErrInvalidPrecision matches any *PrecisionError via errors.Is.
	ErrInvalidPrecision = errors.New("geohash: invalid precision")
)

// RangeError reports a coordinate pair outside [-90, 90] x [-180, 180],
// including NaN and infinite values.
type RangeError struct {
	Lat float64
	Lon float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("The supplied coordinates (%g,%g) are out of range.", e.Lat, e.Lon)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// PrecisionError reports a requested length outside [0, MaxPrecision].
type PrecisionError struct {
	Precision int
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("A geohash can only be %d character long.", MaxPrecision)
}

func (e *PrecisionError) Is(target error) bool { return target == ErrInvalidPrecision }

// Encode returns the geohash of (lat, lon) with exactly precision symbols.
// It fails with *PrecisionError when precision is outside [0, 12] and with
// *RangeError when either coordinate is not a finite value within bounds.
func Encode(lat, lon float64, precision int) (string, error) {
	if precision < 0 || precision > MaxPrecision {
		return "", &PrecisionError{Precision: precision}
	}
	if !ValidCoordinates(lat, lon) {
		return "", &RangeError{Lat: lat, Lon: lon}
	}
	return encode(lat, lon, precision), nil
}

// ValidCoordinates reports whether lat and lon are finite and within bounds.
// NaN fails every comparison, so it is rejected along with ±Inf.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func encode(lat, lon float64, precision int) string {
	var sb strings.Builder
	sb.Grow(precision)

	latMin, latMax := -90.0, 90.0
	lonMin, lonMax := -180.0, 180.0

	var ch, bit int
	for even := true; sb.Len() < precision; even = !even {
		ch <<= 1
		if even {
			mid := (lonMin + lonMax) / 2
			if lon >= mid {
				ch |= 1
				lonMin = mid
			} else {
				lonMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if lat >= mid {
				ch |= 1
				latMin = mid
			} else {
				latMax = mid
			}
		}

		bit++
		if bit == bitsPerChar {
			sb.WriteByte(Alphabet[ch])
			ch, bit = 0, 0
		}
	}
	return sb.String()
}
