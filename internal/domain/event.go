package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Geohash outcome labels carried in WeatherEvent.GeohashStatus.
const (
	GeohashOK          = "ok"
	GeohashUnparseable = "unparseable"
	GeohashNull        = "null"
)

// Text is a nullable text column. It decodes from a JSON string, a JSON
// number (kept as its literal text), or null.
type Text struct {
	Value string
	Valid bool
}

// NewText returns a non-null Text.
func NewText(s string) Text { return Text{Value: s, Valid: true} }

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("text column: expected string, number or null, got %s", data)
	}
	*t = NewText(n.String())
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// RawWeatherRecord is the flat JSON row published to the source topic.
type RawWeatherRecord struct {
	ID       string `json:"id,omitempty"`
	Lat      Text   `json:"lat"`
	Lng      Text   `json:"lng"`
	AvgTmprF Text   `json:"avg_tmpr_f"`
	AvgTmprC Text   `json:"avg_tmpr_c"`
	WthrDate string `json:"wthr_date"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// WeatherEvent is a weather row after geohash enrichment.
type WeatherEvent struct {
	ID       string `json:"id"`
	Lat      Text   `json:"lat"`
	Lng      Text   `json:"lng"`
	AvgTmprF Text   `json:"avg_tmpr_f"`
	AvgTmprC Text   `json:"avg_tmpr_c"`
	WthrDate string `json:"wthr_date,omitempty"`

	Geohash          Text   `json:"geohash"`
	GeohashStatus    string `json:"geohash_status"`
	GeohashPrecision int    `json:"geohash_precision"`

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
