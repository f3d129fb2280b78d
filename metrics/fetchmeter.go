package metrics

import gometrics "github.com/rcrowley/go-metrics"

// FetchMeter tracks a single chain's successful-fetch rate, grounded on
// the teacher's levelDB.Meter pattern in
// storage/database/leveldb_database.go, which registers an
// rcrowley/go-metrics meter per database instance.
type FetchMeter struct {
	meter gometrics.Meter
}

// NewFetchMeter registers (or reuses) a named meter for chain.
func NewFetchMeter(chain string) *FetchMeter {
	name := "fetcher/" + chain + "/blocks"
	m := gometrics.GetOrRegisterMeter(name, gometrics.DefaultRegistry)
	return &FetchMeter{meter: m}
}

// Mark records n successful fetches.
func (f *FetchMeter) Mark(n int64) { f.meter.Mark(n) }

// Rate1 returns the trailing one-minute fetch rate.
func (f *FetchMeter) Rate1() float64 { return f.meter.Rate1() }
