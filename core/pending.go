package core

import (
	"context"
	"sync"

	apperrors "github.com/Skryldev/image-loader/errors"
)

// progressBuffer bounds the per-load event channel; a consumer that falls
// this far behind starts losing the newest events rather than stalling the
// fetch.  Ordering of delivered events is unaffected.
const progressBuffer = 64

type loadFunc func(ctx context.Context, emit func(ChunkEvent)) (*Result, error)

// Pending is the lazy, single-shot handle for one load.  Nothing happens
// until Progress, Done, or Wait is called; the underlying work then runs
// exactly once.  The progress channel closes strictly before the terminal
// result becomes observable, so no event is ever delivered after the outcome.
type Pending struct {
	key ImageKey
	run loadFunc
	ctx context.Context //nolint:containedctx // bound at Load time for the lazy start

	start    sync.Once
	progress chan ChunkEvent
	done     chan struct{}

	res *Result
	err error
}

func newPending(ctx context.Context, key ImageKey, run loadFunc) *Pending {
	return &Pending{
		key:      key,
		run:      run,
		ctx:      ctx,
		progress: make(chan ChunkEvent, progressBuffer),
		done:     make(chan struct{}),
	}
}

// Key returns the ImageKey this load is for.
func (p *Pending) Key() ImageKey { return p.key }

// Progress returns the ordered chunk-event channel for this load, starting
// the load if it has not started.  The channel closes when the load reaches
// a terminal state.  The channel is buffered but lossy: a consumer that
// falls more than progressBuffer events behind misses the newest events,
// possibly including the final byte count.  Read the Result from Wait when
// exact totals matter; the fetch itself is never slowed by a stalled
// consumer.
func (p *Pending) Progress() <-chan ChunkEvent {
	p.ensureStarted()
	return p.progress
}

// Done returns a channel closed once the load has a terminal outcome.
func (p *Pending) Done() <-chan struct{} {
	p.ensureStarted()
	return p.done
}

// Wait blocks until the load resolves or waitCtx is cancelled, starting the
// load if needed.  Cancelling waitCtx abandons the wait, not the load itself;
// the load keeps running under its own context.
func (p *Pending) Wait(waitCtx context.Context) (*Result, error) {
	p.ensureStarted()
	select {
	case <-p.done:
		return p.res, p.err
	case <-waitCtx.Done():
		return nil, apperrors.New(apperrors.KindCancelled, "pending.wait", waitCtx.Err()).
			WithOrigin(p.key.Origin())
	}
}

func (p *Pending) ensureStarted() {
	p.start.Do(func() {
		go func() {
			res, err := p.run(p.ctx, p.emit)
			// Close the event stream first: the ordering contract is that no
			// ChunkEvent arrives after the terminal signal.
			close(p.progress)
			p.res, p.err = res, err
			close(p.done)
		}()
	})
}

// emit forwards an event without ever blocking the fetch.
func (p *Pending) emit(ev ChunkEvent) {
	select {
	case p.progress <- ev:
	default:
	}
}
