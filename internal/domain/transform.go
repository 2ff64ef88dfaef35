package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/geohash-etl/internal/geohash"
)

// ErrDecode is wrapped by ParseRawEvent when the message is not a valid row.
var ErrDecode = errors.New("decode raw event")

// ParseRawEvent deserializes a RawEvent's value into a WeatherEvent.
// It expects the flat JSON row described in the package documentation.
func ParseRawEvent(raw RawEvent) (WeatherEvent, error) {
	var rec RawWeatherRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return WeatherEvent{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	id := rec.ID
	if id == "" {
		id = generateID(rec.Lat, rec.Lng, rec.WthrDate)
	}

	return WeatherEvent{
		ID:       id,
		Lat:      rec.Lat,
		Lng:      rec.Lng,
		AvgTmprF: rec.AvgTmprF,
		AvgTmprC: rec.AvgTmprC,
		WthrDate: rec.WthrDate,

		RawPayload: raw.Value,
	}, nil
}

// EnrichWithGeohash computes the event's geohash at the given precision.
//
// A NULL coordinate leaves the geohash NULL. Unparseable coordinate text
// yields the "error" sentinel. Out-of-range coordinates and an invalid
// precision are returned as errors wrapping geohash.ErrOutOfRange or
// geohash.ErrInvalidPrecision.
func EnrichWithGeohash(event WeatherEvent, precision int) (WeatherEvent, error) {
	event.GeohashPrecision = precision
	event.ProcessedAt = clock.Now()

	if !event.Lat.Valid || !event.Lng.Valid {
		event.Geohash = Text{}
		event.GeohashStatus = GeohashNull
		return event, nil
	}

	res, err := geohash.EncodeText(event.Lat.Value, event.Lng.Value, precision)
	if err != nil {
		return WeatherEvent{}, fmt.Errorf("geohash event %s: %w", event.ID, err)
	}

	event.Geohash = NewText(res.String())
	if res.Parsed {
		event.GeohashStatus = GeohashOK
	} else {
		event.GeohashStatus = GeohashUnparseable
	}
	return event, nil
}

// SerializeWeatherEvent marshals an enriched event for the sink topic.
// Events with a computed geohash are keyed by it so that nearby rows share a
// partition; the rest are keyed by ID.
func SerializeWeatherEvent(event WeatherEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize weather event: %w", err)
	}

	key := event.ID
	if event.GeohashStatus == GeohashOK && event.Geohash.Value != "" {
		key = event.Geohash.Value
	}

	return OutputEvent{
		Key:   []byte(key),
		Value: data,
		Headers: map[string]string{
			"geohash_status": event.GeohashStatus,
			"processed_at":   event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID produces a deterministic ID from the row's identifying columns.
// NULL columns hash differently from empty strings.
func generateID(lat, lng Text, date string) string {
	input := fmt.Sprintf("%s|%s|%s", idPart(lat), idPart(lng), date)
	hash := sha256.Sum256([]byte(input))
	return "wthr-" + hex.EncodeToString(hash[:8])
}

func idPart(t Text) string {
	if !t.Valid {
		return "\\N"
	}
	return strconv.Quote(t.Value)
}
