package pipeline_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/geohash-etl/internal/domain"
	"github.com/couchcryptid/geohash-etl/internal/geohash"
	"github.com/couchcryptid/geohash-etl/internal/observability"
	"github.com/couchcryptid/geohash-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeohashTransformer_Transform(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2016, time.October, 4, 6, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	raw := domain.RawEvent{Value: []byte(`{"id":"w-1","lat":"35.451305","lng":"96.751393","avg_tmpr_f":63.4,"avg_tmpr_c":17.4,"wthr_date":"2016-10-03"}`)}

	tfm := pipeline.NewTransformer(geohash.MaxPrecision, observability.NewMetricsForTesting(), discardLogger())
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "2016-10-04T06:00:00Z", out.Headers["processed_at"])

	var event domain.WeatherEvent
	require.NoError(t, json.Unmarshal(out.Value, &event))
	assert.Len(t, event.Geohash.Value, 12)
	assert.Equal(t, "wnkc", event.Geohash.Value[:4])
	assert.Equal(t, string(out.Key), event.Geohash.Value)
	assert.Equal(t, 12, event.GeohashPrecision)
	assert.Equal(t, domain.NewText("63.4"), event.AvgTmprF)
}

func TestGeohashTransformer_OutOfRange(t *testing.T) {
	tfm := pipeline.NewTransformer(4, observability.NewMetricsForTesting(), discardLogger())
	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(`{"lat":"-Infinity","lng":"0"}`)})
	assert.ErrorIs(t, err, geohash.ErrOutOfRange)
}
