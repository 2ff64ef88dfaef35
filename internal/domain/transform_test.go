package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/geohash-etl/internal/geohash"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2016, time.October, 3, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })
}

func rawEvent(t *testing.T, value string) RawEvent {
	t.Helper()
	return RawEvent{Key: []byte("k"), Value: []byte(value), Topic: "weather-raw"}
}

func TestParseRawEvent_NumberAndStringColumns(t *testing.T) {
	raw := rawEvent(t, `{"id":"w-1","lat":35.451305,"lng":"96.751393","avg_tmpr_f":63.4,"avg_tmpr_c":null,"wthr_date":"2016-10-03"}`)

	event, err := ParseRawEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, "w-1", event.ID)
	assert.Equal(t, NewText("35.451305"), event.Lat)
	assert.Equal(t, NewText("96.751393"), event.Lng)
	assert.Equal(t, NewText("63.4"), event.AvgTmprF)
	assert.False(t, event.AvgTmprC.Valid)
	assert.Equal(t, "2016-10-03", event.WthrDate)
	assert.Equal(t, raw.Value, event.RawPayload)
	assert.True(t, event.ProcessedAt.IsZero())
}

func TestParseRawEvent_Invalid(t *testing.T) {
	_, err := ParseRawEvent(rawEvent(t, "not json"))
	require.ErrorIs(t, err, ErrDecode)

	_, err = ParseRawEvent(rawEvent(t, `{"lat":true,"lng":1}`))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestParseRawEvent_GeneratesDeterministicID(t *testing.T) {
	body := `{"lat":"1.5","lng":"2.5","wthr_date":"2017-08-01"}`

	a, err := ParseRawEvent(rawEvent(t, body))
	require.NoError(t, err)
	b, err := ParseRawEvent(rawEvent(t, body))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Regexp(t, `^wthr-[0-9a-f]{16}$`, a.ID)

	c, err := ParseRawEvent(rawEvent(t, `{"lat":"1.5","lng":"2.5","wthr_date":"2017-08-02"}`))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestGenerateID_NullDiffersFromEmpty(t *testing.T) {
	assert.NotEqual(t, generateID(Text{}, NewText("1"), "d"), generateID(NewText(""), NewText("1"), "d"))
}

func TestEnrichWithGeohash_OK(t *testing.T) {
	freezeClock(t)

	event := WeatherEvent{ID: "w-1", Lat: NewText("35.451305"), Lng: NewText("96.751393")}
	got, err := EnrichWithGeohash(event, geohash.DefaultPrecision)
	require.NoError(t, err)

	want := WeatherEvent{
		ID:               "w-1",
		Lat:              NewText("35.451305"),
		Lng:              NewText("96.751393"),
		Geohash:          NewText("wnkc"),
		GeohashStatus:    GeohashOK,
		GeohashPrecision: 4,
		ProcessedAt:      frozen,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("enriched event mismatch (-want +got):\n%s", diff)
	}
}

func TestEnrichWithGeohash_Precision(t *testing.T) {
	event := WeatherEvent{Lat: NewText("-90"), Lng: NewText("180")}

	got, err := EnrichWithGeohash(event, geohash.MaxPrecision)
	require.NoError(t, err)
	assert.Equal(t, "pbpbpbpbpbpb", got.Geohash.Value)
	assert.Equal(t, geohash.MaxPrecision, got.GeohashPrecision)

	got, err = EnrichWithGeohash(event, 0)
	require.NoError(t, err)
	assert.True(t, got.Geohash.Valid)
	assert.Empty(t, got.Geohash.Value)
	assert.Equal(t, GeohashOK, got.GeohashStatus)
}

func TestEnrichWithGeohash_Unparseable(t *testing.T) {
	for _, ev := range []WeatherEvent{
		{Lat: NewText("N/A"), Lng: NewText("35.451305")},
		{Lat: NewText("35.451305"), Lng: NewText("N/A")},
		{Lat: NewText("N/A"), Lng: NewText("N/A")},
	} {
		got, err := EnrichWithGeohash(ev, geohash.DefaultPrecision)
		require.NoError(t, err)
		assert.Equal(t, NewText("error"), got.Geohash)
		assert.Equal(t, GeohashUnparseable, got.GeohashStatus)
	}
}

func TestEnrichWithGeohash_NullShortCircuits(t *testing.T) {
	freezeClock(t)

	// Even an invalid precision does not fail a NULL row: nothing is encoded.
	got, err := EnrichWithGeohash(WeatherEvent{Lat: NewText("1")}, 99)
	require.NoError(t, err)
	assert.False(t, got.Geohash.Valid)
	assert.Equal(t, GeohashNull, got.GeohashStatus)
	assert.Equal(t, frozen, got.ProcessedAt)
}

func TestEnrichWithGeohash_OutOfRangeFails(t *testing.T) {
	// The row stores lng/lat swapped: latitude 96.75 is out of range.
	_, err := EnrichWithGeohash(WeatherEvent{ID: "w-9", Lat: NewText("96.751393"), Lng: NewText("35.451305")}, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, geohash.ErrOutOfRange)
	assert.Contains(t, err.Error(), "w-9")

	_, err = EnrichWithGeohash(WeatherEvent{Lat: NewText("Infinity"), Lng: NewText("0")}, 4)
	assert.ErrorIs(t, err, geohash.ErrOutOfRange)
}

func TestEnrichWithGeohash_InvalidPrecisionFails(t *testing.T) {
	_, err := EnrichWithGeohash(WeatherEvent{Lat: NewText("1"), Lng: NewText("2")}, 13)
	assert.ErrorIs(t, err, geohash.ErrInvalidPrecision)
}

func TestSerializeWeatherEvent_KeyedByGeohash(t *testing.T) {
	event := WeatherEvent{
		ID:            "w-1",
		Lat:           NewText("35.451305"),
		Lng:           NewText("96.751393"),
		Geohash:       NewText("wnkc"),
		GeohashStatus: GeohashOK,
		ProcessedAt:   frozen,
	}

	out, err := SerializeWeatherEvent(event)
	require.NoError(t, err)
	assert.Equal(t, []byte("wnkc"), out.Key)
	assert.Equal(t, GeohashOK, out.Headers["geohash_status"])
	assert.Equal(t, "2016-10-03T12:00:00Z", out.Headers["processed_at"])

	var roundtrip WeatherEvent
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))
	assert.Equal(t, event.Geohash, roundtrip.Geohash)
	assert.Equal(t, event.Lat, roundtrip.Lat)
}

func TestSerializeWeatherEvent_KeyedByIDOtherwise(t *testing.T) {
	for _, event := range []WeatherEvent{
		{ID: "w-2", Geohash: NewText("error"), GeohashStatus: GeohashUnparseable},
		{ID: "w-3", GeohashStatus: GeohashNull},
		{ID: "w-4", Geohash: NewText(""), GeohashStatus: GeohashOK},
	} {
		out, err := SerializeWeatherEvent(event)
		require.NoError(t, err)
		assert.Equal(t, []byte(event.ID), out.Key)
	}
}

func TestSerializeWeatherEvent_NullGeohashIsJSONNull(t *testing.T) {
	out, err := SerializeWeatherEvent(WeatherEvent{ID: "w-3", GeohashStatus: GeohashNull})
	require.NoError(t, err)
	assert.Contains(t, string(out.Value), `"geohash":null`)
	assert.Contains(t, string(out.Value), `"lat":null`)
}
