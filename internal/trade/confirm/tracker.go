package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
)

// Tracker resolves a broadcast transaction to confirmed or failed by racing push events
// against receipt polling. It tracks one session at a time.
type Tracker struct {
	cfg      Config
	receipts ReceiptReader
	events   EventSource
	metrics  *metrics.Service

	// lifecycle serializes Start and Cancel
	lifecycle sync.Mutex

	mu        sync.Mutex
	session   Session
	active    *run
	listeners map[int]Listener
	nextID    int
}

// ErrSessionStopped is returned by Await when its session was cancelled or replaced before
// reaching a terminal stage.
var ErrSessionStopped = errors.New("confirmation session stopped")

const (
	stopCancelled = "cancelled"
	stopReplaced  = "replaced by a newer session"
)

// run owns the goroutines of one session.
type run struct {
	hash   common.Hash
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger

	// stopped is closed by teardown, after stopReason is set.
	stopped    chan struct{}
	stopReason string
}

type pollResult struct {
	stage  Stage
	reason string
}

// NewTracker returns an idle tracker. events may be nil, polling alone then decides.
func NewTracker(cfg Config, receipts ReceiptReader, events EventSource, m *metrics.Service) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Tracker{
		cfg:       cfg,
		receipts:  receipts,
		events:    events,
		metrics:   m,
		session:   Session{Stage: StageNone},
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for all future transitions.
func (t *Tracker) Subscribe(fn Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		delete(t.listeners, id)
	}
}

// Snapshot returns the current session.
func (t *Tracker) Snapshot() Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.session
}

// Start begins confirming hash. A session in flight is torn down first and none of its
// goroutines survive the call. The session outlives ctx; it ends on a terminal stage,
// the timeout or Cancel.
func (t *Tracker) Start(ctx context.Context, hash common.Hash) {
	t.start(ctx, hash)
}

func (t *Tracker) start(ctx context.Context, hash common.Hash) *run {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	t.teardown(stopReplaced)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		hash:    hash,
		ctx:     runCtx,
		cancel:  cancel,
		log:     util.LogFromContext(ctx).With().Str("tx_hash", hash.Hex()).Logger(),
		stopped: make(chan struct{}),
	}

	var push <-chan Event
	if t.events != nil && t.cfg.Account != (common.Address{}) {
		ch, err := t.events.Subscribe(runCtx, t.cfg.Account)
		if err != nil {
			r.log.Warn().Err(err).Msg("Push channel unavailable, confirming by polling only")
		} else {
			push = ch
		}
	}

	now := time.Now()

	t.mu.Lock()
	t.active = r
	t.session = Session{TxHash: hash, Stage: StageSubmitted, Source: SourceStart, StartedAt: now, UpdatedAt: now}
	t.mu.Unlock()

	polls := make(chan pollResult, 1)

	r.wg.Add(2)
	go t.poll(r, polls)
	go t.loop(r, push, polls)

	return r
}

// Cancel tears down the current session and resets to none. No listener is called for
// the cancelled session after Cancel returns; a pending Await returns ErrSessionStopped.
func (t *Tracker) Cancel() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	t.teardown(stopCancelled)

	t.mu.Lock()
	t.session = Session{Stage: StageNone}
	t.mu.Unlock()
}

func (t *Tracker) teardown(reason string) {
	t.mu.Lock()
	r := t.active
	t.active = nil
	t.mu.Unlock()

	if r == nil {
		return
	}

	r.cancel()
	r.wg.Wait()

	r.stopReason = reason
	close(r.stopped)
}

// loop is the only writer of session transitions.
func (t *Tracker) loop(r *run, push <-chan Event, polls <-chan pollResult) {
	defer r.wg.Done()
	defer r.cancel()

	timer := time.NewTimer(t.cfg.Timeout)
	defer timer.Stop()

	t.announce(r)

	for {
		var done bool

		select {
		case <-r.ctx.Done():
			return
		case ev, ok := <-push:
			if !ok {
				// polling keeps going
				push = nil
				continue
			}
			if ev.TxHash != r.hash {
				continue
			}
			reason := ev.Reason
			if ev.Kind == StageFailed && reason == "" {
				reason = "Transaction failed"
			}
			done = t.transition(r, ev.Kind, SourcePush, reason)
		case res := <-polls:
			done = t.transition(r, res.stage, SourcePoll, res.reason)
		case <-timer.C:
			done = t.transition(r, StageFailed, SourceTimeout, ReasonTimeout)
		}

		if done {
			return
		}
	}
}

func (t *Tracker) poll(r *run, results chan<- pollResult) {
	defer r.wg.Done()

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}

		receipt, err := t.receipts.TransactionReceipt(r.ctx, r.hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) && r.ctx.Err() == nil {
				r.log.Debug().Err(err).Msg("Receipt lookup failed, retrying on next tick")
			}
			continue
		}

		res := pollResult{stage: StageConfirmed}
		if receipt.Status != types.ReceiptStatusSuccessful {
			res = pollResult{stage: StageFailed, reason: ReasonReverted}
		}

		select {
		case results <- res:
		case <-r.ctx.Done():
		}

		return
	}
}

// announce notifies listeners of the submitted stage set by Start.
func (t *Tracker) announce(r *run) {
	t.mu.Lock()
	if t.active != r {
		t.mu.Unlock()
		return
	}
	snapshot := t.session
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.notify(r, snapshot, listeners)
}

// transition applies stage if it moves the session forward and reports whether the
// session is now terminal.
func (t *Tracker) transition(r *run, stage Stage, source Source, reason string) bool {
	t.mu.Lock()

	if t.active != r {
		t.mu.Unlock()
		return true
	}

	current := t.session.Stage
	if current.IsTerminal() {
		t.mu.Unlock()
		return true
	}

	if stage != StageFailed && stage.rank() <= current.rank() {
		t.mu.Unlock()
		return false
	}

	t.session.Stage = stage
	t.session.Source = source
	t.session.Reason = reason
	t.session.UpdatedAt = time.Now()
	snapshot := t.session
	listeners := t.snapshotListeners()

	t.mu.Unlock()

	t.notify(r, snapshot, listeners)

	return stage.IsTerminal()
}

// snapshotListeners must be called with t.mu held.
func (t *Tracker) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(t.listeners))
	for _, l := range t.listeners {
		listeners = append(listeners, l)
	}

	return listeners
}

func (t *Tracker) notify(r *run, s Session, listeners []Listener) {
	t.metrics.ObserveTransition(string(s.Stage), string(s.Source))

	event := r.log.Debug()
	if s.Stage.IsTerminal() {
		t.metrics.ObserveResolution(string(s.Stage), string(s.Source), s.UpdatedAt.Sub(s.StartedAt))
		event = r.log.Info()
	}
	event.Str("stage", string(s.Stage)).Str("source", string(s.Source)).Str("reason", s.Reason).Msg("Confirmation stage changed")

	for _, l := range listeners {
		l(s)
	}
}

// Await starts confirming hash and blocks until the session is terminal or ctx ends.
// When ctx ends first the session keeps running in the background. A session cancelled or
// replaced by another Start before it is terminal is reported as a confirmation timeout
// wrapping ErrSessionStopped.
func (t *Tracker) Await(ctx context.Context, hash common.Hash) (Session, error) {
	terminal := make(chan Session, 1)

	unsubscribe := t.Subscribe(func(s Session) {
		if s.TxHash != hash || !s.Stage.IsTerminal() {
			return
		}
		select {
		case terminal <- s:
		default:
		}
	})
	defer unsubscribe()

	r := t.start(ctx, hash)

	select {
	case <-ctx.Done():
		return t.Snapshot(), errors.Wrap(ctx.Err(), "stopped waiting for confirmation")
	case s := <-terminal:
		return s, SessionError(s)
	case <-r.stopped:
		// listeners run before teardown returns, a terminal stage is already buffered
		select {
		case s := <-terminal:
			return s, SessionError(s)
		default:
		}

		return Session{TxHash: hash, Stage: StageSubmitted}, txerr.New(txerr.KindConfirmationTimeout, "confirm "+hash.Hex(),
			errors.Wrap(ErrSessionStopped, r.stopReason))
	}
}

// SessionError classifies a failed session, nil for anything else.
func SessionError(s Session) error {
	if s.Stage != StageFailed {
		return nil
	}

	if s.Source == SourceTimeout {
		return txerr.New(txerr.KindConfirmationTimeout, "confirm "+s.TxHash.Hex(), errors.New(s.Reason))
	}

	return txerr.Revert("confirm "+s.TxHash.Hex(), s.Reason)
}
