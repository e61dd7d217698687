package service

import (
	"context"
	"sync"
)

// genToken represents ownership of one generation's lifetime.
type genToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// inflight is the single global in-flight slot. At most one generation
// holds it at a time; beginning a new one cancels the current holder.
type inflight struct {
	mu    sync.Mutex
	token *genToken
}

// begin cancels the current holder, if any, and installs a fresh token
// derived from parent.
func (in *inflight) begin(parent context.Context) *genToken {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.token != nil {
		in.token.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t := &genToken{ctx: ctx, cancel: cancel}
	in.token = t
	return t
}

// stop cancels the current holder. Reports whether a generation was
// actually in flight.
func (in *inflight) stop() bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.token == nil {
		return false
	}
	in.token.cancel()
	in.token = nil
	return true
}

// release ends t's tenure. The slot is vacated only if t still holds it;
// a superseding generation keeps its own token.
func (in *inflight) release(t *genToken) {
	in.mu.Lock()
	defer in.mu.Unlock()

	t.cancel()
	if in.token == t {
		in.token = nil
	}
}
