// Package predictor implements the two-level adaptive branch predictor:
// a per-PC-bucket 2-bit local history selecting one of four 2-bit
// saturating counters.
package predictor

// BucketCount is the number of hashed PC buckets.
const BucketCount = 4096

// HistoryDepth is the number of bits of local branch history kept per
// bucket, selecting among 2^HistoryDepth saturating counters.
const HistoryDepth = 2

// Config holds predictor sizing. Config exists so callers can build
// multiple independent predictor instances without package-level state,
// even though this predictor's bucket count rarely changes in practice.
type Config struct {
	Buckets uint32
}

// Default returns the predictor's default configuration.
func Default() Config {
	return Config{Buckets: BucketCount}
}

// Stats holds global predictor accuracy counters.
type Stats struct {
	Total   uint64
	Success uint64
}

// Accuracy returns the fraction of predictions that were not mispredicted,
// 1.0 if no predictions have been made yet.
func (s Stats) Accuracy() float64 {
	if s.Total == 0 {
		return 1.0
	}
	return float64(s.Success) / float64(s.Total)
}

// Predictor is a two-level adaptive (2-bit saturating counter, 2-bit local
// history) branch predictor with one independent counter set per hashed PC
// bucket.
type Predictor struct {
	buckets uint32
	// counters[history][bucket] is a 2-bit saturating counter, 0..3;
	// >=2 predicts taken.
	counters [1 << HistoryDepth][]uint8
	history  []uint8
	stats    Stats
}

// New creates a Predictor with the given configuration. All counters start
// weakly-taken (value 2), so an untrained predictor defaults to taken.
func New(cfg Config) *Predictor {
	if cfg.Buckets == 0 {
		cfg.Buckets = BucketCount
	}
	p := &Predictor{buckets: cfg.Buckets, history: make([]uint8, cfg.Buckets)}
	for h := range p.counters {
		p.counters[h] = make([]uint8, cfg.Buckets)
		for i := range p.counters[h] {
			p.counters[h][i] = 2
		}
	}
	return p
}

func (p *Predictor) hash(pc uint32) uint32 {
	return ((pc >> 12) ^ (pc >> 2)) & (p.buckets - 1)
}

// Predict returns true (taken) if the counter selected by pc's bucket and
// local history is saturated at 2 or 3.
func (p *Predictor) Predict(pc uint32) bool {
	key := p.hash(pc)
	return p.counters[p.history[key]][key] >= 2
}

// Feedback updates the predictor with a branch's actual outcome. taken is
// the resolved direction; mispredicted is unused for the counter/history
// update itself (the counter tracks actual outcomes regardless of whether
// this particular prediction was right) but is folded into the global
// accuracy statistics.
func (p *Predictor) Feedback(pc uint32, taken, mispredicted bool) {
	if !mispredicted {
		p.stats.Success++
	}
	p.stats.Total++

	key := p.hash(pc)
	counter := p.counters[p.history[key]][key]
	if taken {
		if counter < 3 {
			counter++
		}
	} else if counter > 0 {
		counter--
	}
	p.counters[p.history[key]][key] = counter

	h := p.history[key]
	h = (h<<1 | boolToBit(taken)) & ((1 << HistoryDepth) - 1)
	p.history[key] = h
}

// Stats returns the predictor's global accuracy counters.
func (p *Predictor) Stats() Stats {
	return p.stats
}

func boolToBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
