package framedecode

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"
)

// idleThreshold is how long a worker may go without consuming before
// Stats flags it as stalled, provided frames are still being decoded.
const idleThreshold = 30 * time.Second

// PipelineStats is a point-in-time snapshot of pipeline telemetry.
// Counters are cumulative since construction.
type PipelineStats struct {
	// FramesSubmitted counts accepted Submit calls.
	FramesSubmitted uint64
	// SubmitDrops counts inbox overwrites: the producer outran the
	// decode loop and an undecoded frame was replaced.
	SubmitDrops uint64
	// FramesDecoded counts successful decodes.
	FramesDecoded uint64
	// DecodeErrors counts failed decodes, of any kind.
	DecodeErrors uint64

	// DecodeErrors broken down by kind.
	ErrorsUnsupported uint64 // unknown format, bit depth, or pattern
	ErrorsGeometry    uint64 // dimension or buffer-length mismatch
	ErrorsCompressed  uint64 // compressed frame sent down the raw path
	ErrorsOther       uint64

	// ActiveWorkers is the number of registered subscribers.
	ActiveWorkers int
	// Workers holds one entry per subscriber, ordered by ID.
	Workers []WorkerStats
}

// WorkerStats describes one subscriber's mailbox.
type WorkerStats struct {
	ID string
	// LastConsumedSeq is the Seq of the last raster the worker read.
	LastConsumedSeq uint64
	// TotalDrops counts rasters overwritten before the worker read them.
	TotalDrops uint64
	// ConsecutiveDrops counts overwrites since the worker's last read.
	// Resets to zero on every read.
	ConsecutiveDrops uint64
	// IdleFor is the time since the worker's last read.
	IdleFor time.Duration
	// Stalled reports a worker idle beyond threshold while decodes keep
	// landing: the pipeline is alive but this consumer is not.
	Stalled bool
}

// Stats snapshots the pipeline. Safe to call at any time, including on
// a stopped pipeline; counters freeze at their final values.
func (p *Pipeline) Stats() PipelineStats {
	stats := PipelineStats{
		FramesSubmitted:   atomic.LoadUint64(&p.framesSubmitted),
		SubmitDrops:       atomic.LoadUint64(&p.submitDrops),
		FramesDecoded:     atomic.LoadUint64(&p.framesDecoded),
		DecodeErrors:      atomic.LoadUint64(&p.decodeErrors),
		ErrorsUnsupported: atomic.LoadUint64(&p.errUnsupported),
		ErrorsGeometry:    atomic.LoadUint64(&p.errGeometry),
		ErrorsCompressed:  atomic.LoadUint64(&p.errCompressed),
		ErrorsOther:       atomic.LoadUint64(&p.errOther),
	}

	lastDecode := atomic.LoadInt64(&p.lastDecodeNano)
	decodingRecently := lastDecode != 0 && time.Since(time.Unix(0, lastDecode)) < idleThreshold

	p.slots.Range(func(key, value any) bool {
		slot := value.(*workerSlot)

		slot.mu.Lock()
		idleFor := time.Since(slot.lastConsumedAt)
		ws := WorkerStats{
			ID:               key.(string),
			LastConsumedSeq:  slot.lastConsumedSeq,
			TotalDrops:       slot.totalDrops,
			ConsecutiveDrops: slot.consecutiveDrops,
			IdleFor:          idleFor,
			Stalled:          idleFor > idleThreshold && decodingRecently,
		}
		slot.mu.Unlock()

		stats.Workers = append(stats.Workers, ws)
		return true
	})

	// sync.Map iteration order is unspecified; order by ID so snapshots
	// diff cleanly.
	sort.Slice(stats.Workers, func(i, j int) bool {
		return stats.Workers[i].ID < stats.Workers[j].ID
	})
	stats.ActiveWorkers = len(stats.Workers)
	return stats
}

// countDecodeError advances the total and the per-kind counter for one
// failed decode.
func (p *Pipeline) countDecodeError(err error) {
	atomic.AddUint64(&p.decodeErrors, 1)
	switch {
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnsupportedBitDepth),
		errors.Is(err, ErrMalformedPattern):
		atomic.AddUint64(&p.errUnsupported, 1)
	case errors.Is(err, ErrGeometryMismatch):
		atomic.AddUint64(&p.errGeometry, 1)
	case errors.Is(err, ErrCompressedFormat):
		atomic.AddUint64(&p.errCompressed, 1)
	default:
		atomic.AddUint64(&p.errOther, 1)
	}
}
