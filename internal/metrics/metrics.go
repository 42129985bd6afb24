// Package metrics keeps process-local counters surfaced via /ops/status.
package metrics

import "sync/atomic"

var (
	resolutions        int64
	visitsLogged       int64
	visitsDropped      int64
	summariesGenerated int64
	summaryCacheHits   int64
	ogRendered         int64
)

func IncResolutions()        { atomic.AddInt64(&resolutions, 1) }
func IncVisitsLogged()       { atomic.AddInt64(&visitsLogged, 1) }
func IncVisitsDropped()      { atomic.AddInt64(&visitsDropped, 1) }
func IncSummariesGenerated() { atomic.AddInt64(&summariesGenerated, 1) }
func IncSummaryCacheHits()   { atomic.AddInt64(&summaryCacheHits, 1) }
func IncOGRendered()         { atomic.AddInt64(&ogRendered, 1) }

func Snapshot() map[string]int64 {
	return map[string]int64{
		"resolutions":         atomic.LoadInt64(&resolutions),
		"visits_logged":       atomic.LoadInt64(&visitsLogged),
		"visits_dropped":      atomic.LoadInt64(&visitsDropped),
		"summaries_generated": atomic.LoadInt64(&summariesGenerated),
		"summary_cache_hits":  atomic.LoadInt64(&summaryCacheHits),
		"og_rendered":         atomic.LoadInt64(&ogRendered),
	}
}
