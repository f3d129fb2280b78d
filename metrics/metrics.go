// Package metrics exposes the process's observability surface:
// prometheus counters for the deposit lifecycle and go-metrics meters for
// per-chain fetch throughput, in the style of the teacher's
// storage/database/leveldb_database.go Meter method.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	blocksProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xscanner_blocks_processed_total",
		Help: "Blocks consumed by the analyzer, by chain.",
	}, []string{"chain"})

	candidatesMatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xscanner_candidates_matched_total",
		Help: "Candidate transfers that hit the address cache, by chain.",
	}, []string{"chain"})

	depositsDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xscanner_deposits_detected_total",
		Help: "Deposits saved as newly detected, by chain.",
	}, []string{"chain"})

	depositsConfirmed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xscanner_deposits_confirmed_total",
		Help: "Deposits marked confirmed, by chain.",
	}, []string{"chain"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xscanner_cache_lookups_total",
		Help: "Address cache probes, partitioned by hit/miss/error.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(blocksProcessed, candidatesMatched, depositsDetected, depositsConfirmed, cacheLookups)
}

func BlockProcessed(chain string)      { blocksProcessed.WithLabelValues(chain).Inc() }
func CandidateMatched(chain string)    { candidatesMatched.WithLabelValues(chain).Inc() }
func DepositDetected(chain string)     { depositsDetected.WithLabelValues(chain).Inc() }
func DepositConfirmed(chain string)    { depositsConfirmed.WithLabelValues(chain).Inc() }
func CacheHit()                        { cacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss()                       { cacheLookups.WithLabelValues("miss").Inc() }
func CacheError()                      { cacheLookups.WithLabelValues("error").Inc() }
