package framedecode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// PipelineConfig configures a decode pipeline.
type PipelineConfig struct {
	// Decoder performs the conversions. nil means the pipeline
	// constructs its own.
	Decoder *Decoder
	// Name tags the pipeline's log lines and defaults to "decode".
	Name string
}

// Pipeline is the just-in-time decode fan-out: a producer submits raw
// frames, one decode goroutine converts the latest frame, and decoded
// rasters fan out to per-worker single-slot mailboxes.
//
// Frames-in-flight stay bounded at one regardless of worker count:
// the inbox holds at most one undecoded frame, each worker slot at most
// one undelivered raster. A new arrival overwrites an unconsumed one
// and the overwrite is counted, never blocked on.
//
// Goroutine topology:
//   - 1 fixed: decodeLoop (spawned by Start, stopped by Stop)
//   - N external: worker goroutines (owned by the workers themselves)
//
// Thread-safety: all methods are safe for concurrent use.
type Pipeline struct {
	name    string
	decoder *Decoder

	// Inbox mailbox: producer to decodeLoop handoff.
	inboxMu     sync.Mutex
	inboxCond   *sync.Cond
	inboxFrame  *Frame // nil = consumed
	submitDrops uint64 // atomic

	// Worker registry: workerID (string) -> *workerSlot.
	slots sync.Map

	// Decode telemetry, all atomic (Stats reads without locks).
	framesSubmitted uint64
	framesDecoded   uint64
	decodeErrors    uint64
	errUnsupported  uint64
	errGeometry     uint64
	errCompressed   uint64
	errOther        uint64
	lastDecodeNano  int64

	// Lifecycle.
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	startMu  sync.Mutex
	started  bool
	stopping atomic.Bool
}

// workerSlot is a per-worker mailbox: single raster slot, blocking
// consume, overwrite on deliver, drop telemetry. All fields are guarded
// by mu.
type workerSlot struct {
	mu     sync.Mutex
	cond   *sync.Cond
	raster *Raster // nil = consumed

	lastConsumedAt   time.Time
	lastConsumedSeq  uint64
	consecutiveDrops uint64
	totalDrops       uint64

	closed bool
}

// NewPipeline creates a pipeline. Validation is fail-fast and no
// goroutine starts until Start.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if strings.ContainsAny(cfg.Name, "\n\r") {
		return nil, fmt.Errorf("framedecode: pipeline name %q contains control characters", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = "decode"
	}
	if cfg.Decoder == nil {
		cfg.Decoder = New()
	}

	p := &Pipeline{
		name:    cfg.Name,
		decoder: cfg.Decoder,
	}
	p.inboxCond = sync.NewCond(&p.inboxMu)
	return p, nil
}

// Start launches the decode loop. The loop runs until Stop or until ctx
// is cancelled. A second Start is an error.
//
// Frames submitted before Start sit in the inbox and decode once the
// loop is running.
func (p *Pipeline) Start(ctx context.Context) error {
	p.startMu.Lock()
	defer p.startMu.Unlock()

	if p.started {
		return fmt.Errorf("framedecode: pipeline %q already started", p.name)
	}
	if p.stopping.Load() {
		return ErrPipelineClosed
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	p.wg.Add(1)
	go p.decodeLoop()

	slog.Info("framedecode: pipeline started", "pipeline", p.name)
	return nil
}

// Stop shuts the pipeline down: the decode loop exits, every subscriber
// read func returns ErrPipelineClosed, and subsequent Submits are
// rejected. Idempotent; blocks until the decode loop has exited.
func (p *Pipeline) Stop() error {
	if p.stopping.Swap(true) {
		return nil
	}

	p.startMu.Lock()
	started := p.started
	p.startMu.Unlock()

	if started {
		p.cancel()
		// Wake decodeLoop if blocked on an empty inbox.
		p.inboxMu.Lock()
		p.inboxCond.Broadcast()
		p.inboxMu.Unlock()
		p.wg.Wait()
	}

	// Close every slot so blocked readers return.
	p.slots.Range(func(_, value any) bool {
		slot := value.(*workerSlot)
		slot.mu.Lock()
		slot.closed = true
		slot.cond.Broadcast()
		slot.mu.Unlock()
		return true
	})

	slog.Info("framedecode: pipeline stopped",
		"pipeline", p.name,
		"frames_decoded", atomic.LoadUint64(&p.framesDecoded),
		"decode_errors", atomic.LoadUint64(&p.decodeErrors))
	return nil
}

// Submit hands a raw frame to the pipeline.
//
// Semantics:
//   - Non-blocking: overwrites the single inbox slot and returns.
//   - Overwriting an undecoded frame counts a SubmitDrop (latest wins).
//   - A frame without a TraceID gets a fresh UUID so the decode can be
//     correlated downstream.
//   - Returns ErrPipelineClosed after Stop.
//
// frame.Data must not be modified after Submit.
func (p *Pipeline) Submit(frame Frame) error {
	if p.stopping.Load() {
		return ErrPipelineClosed
	}

	if frame.TraceID == "" {
		frame.TraceID = uuid.New().String()
	}

	var dropped uint64
	p.inboxMu.Lock()
	if p.inboxFrame != nil {
		dropped = atomic.AddUint64(&p.submitDrops, 1)
	}
	p.inboxFrame = &frame
	p.inboxCond.Signal()
	p.inboxMu.Unlock()

	atomic.AddUint64(&p.framesSubmitted, 1)

	// Log drops at power-of-two counts so a persistent backlog surfaces
	// without flooding.
	if dropped != 0 && dropped&(dropped-1) == 0 {
		slog.Warn("framedecode: submit overwrote undecoded frame",
			"pipeline", p.name,
			"submit_drops", dropped,
			"seq", frame.Seq,
			"trace_id", frame.TraceID)
	}
	return nil
}

// Subscribe registers a worker and returns its blocking read func.
//
// The read func waits until a raster lands in the worker's slot, the
// given ctx ends, or the pipeline stops. Each raster is delivered at
// most once per worker; a new raster overwrites an unconsumed one and
// the slot's drop counters advance.
//
// The read func must be called from a single goroutine. A duplicate
// workerID is an error; after Stop, Subscribe returns
// ErrPipelineClosed.
func (p *Pipeline) Subscribe(workerID string) (func(ctx context.Context) (*Raster, error), error) {
	if p.stopping.Load() {
		return nil, ErrPipelineClosed
	}

	slot := &workerSlot{lastConsumedAt: time.Now()}
	slot.cond = sync.NewCond(&slot.mu)

	if _, loaded := p.slots.LoadOrStore(workerID, slot); loaded {
		return nil, fmt.Errorf("framedecode: subscribe: worker %q already registered", workerID)
	}

	slog.Debug("framedecode: worker subscribed", "pipeline", p.name, "worker_id", workerID)

	read := func(ctx context.Context) (*Raster, error) {
		slot.mu.Lock()
		defer slot.mu.Unlock()

		for slot.raster == nil && !slot.closed && ctx.Err() == nil {
			// sync.Cond cannot watch a context, so hook the context to
			// broadcast the cond for the duration of this wait.
			stop := context.AfterFunc(ctx, func() {
				slot.mu.Lock()
				slot.cond.Broadcast()
				slot.mu.Unlock()
			})
			slot.cond.Wait()
			stop()
		}

		if slot.closed {
			return nil, ErrPipelineClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raster := slot.raster
		slot.raster = nil
		slot.lastConsumedAt = time.Now()
		slot.lastConsumedSeq = raster.Seq
		slot.consecutiveDrops = 0
		return raster, nil
	}
	return read, nil
}

// Unsubscribe removes a worker, waking its read func with
// ErrPipelineClosed. Idempotent.
func (p *Pipeline) Unsubscribe(workerID string) {
	value, ok := p.slots.Load(workerID)
	if !ok {
		return
	}
	slot := value.(*workerSlot)

	slot.mu.Lock()
	slot.closed = true
	slot.cond.Broadcast()
	slot.mu.Unlock()

	p.slots.Delete(workerID)
	slog.Debug("framedecode: worker unsubscribed", "pipeline", p.name, "worker_id", workerID)
}

// decodeLoop consumes the inbox and fans decoded rasters out to the
// worker slots. A decode error is counted and logged, never fatal to
// the loop: the next frame gets its chance.
func (p *Pipeline) decodeLoop() {
	defer p.wg.Done()

	for {
		p.inboxMu.Lock()
		for p.inboxFrame == nil {
			if p.ctx.Err() != nil {
				p.inboxMu.Unlock()
				return
			}
			p.inboxCond.Wait()
			if p.ctx.Err() != nil {
				p.inboxMu.Unlock()
				return
			}
		}
		frame := *p.inboxFrame
		p.inboxFrame = nil
		p.inboxMu.Unlock()

		raster, err := p.decoder.Decode(frame)
		if err != nil {
			p.countDecodeError(err)
			slog.Warn("framedecode: decode failed",
				"pipeline", p.name,
				"format", string(frame.Format),
				"seq", frame.Seq,
				"trace_id", frame.TraceID,
				"error", err)
			continue
		}

		atomic.AddUint64(&p.framesDecoded, 1)
		atomic.StoreInt64(&p.lastDecodeNano, time.Now().UnixNano())
		p.fanOut(raster)
	}
}

// fanOut delivers one raster to every registered slot, sequentially.
// Delivery is a mutex grab and a pointer assign per worker, far below
// the cost of the decode that produced the raster, so there is nothing
// to parallelize.
func (p *Pipeline) fanOut(raster *Raster) {
	p.slots.Range(func(_, value any) bool {
		value.(*workerSlot).deliver(raster)
		return true
	})
}

// deliver places a raster in the slot, overwriting an unconsumed one
// and advancing the drop counters. No-op on a closed slot.
func (s *workerSlot) deliver(raster *Raster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.raster != nil {
		s.consecutiveDrops++
		s.totalDrops++
	}
	s.raster = raster
	s.cond.Signal()
}
