// Package domain models weather observation rows and their geohash enrichment.
//
// # Input
//
// Each Kafka message on the source topic is one flat JSON row:
//
//	{"lat": 35.451305, "lng": 96.751393, "avg_tmpr_f": 63.4, "avg_tmpr_c": 17.4, "wthr_date": "2016-10-03"}
//
// Coordinate and temperature columns are text columns. Producers send them as
// JSON numbers or JSON strings; both decode to the literal text so values like
// "N/A" survive until the geohash step. A missing key and JSON null are the
// same SQL-style NULL.
//
// # Geohash enrichment
//
// The geohash is computed from (lat, lng) in that order, latitude first. The
// outcome is recorded in GeohashStatus:
//
//	ok           both columns parsed and are in range; Geohash holds the hash
//	unparseable  a column is not a number; Geohash holds the "error" sentinel
//	null         a column is NULL; Geohash stays NULL and nothing is computed
//
// Coordinates outside [-90, 90] x [-180, 180] are not absorbed. They fail the
// transform and the pipeline drops the row.
//
// # ID Generation
//
// Rows without an "id" get a deterministic SHA-256 ID over lat|lng|wthr_date,
// so replays produce the same key. See [generateID].
package domain
