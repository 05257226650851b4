package service

import (
	"context"
	"sync"

	"github.com/leshachaplin/eventrelay/internal/domain"
)

type fakeSender struct {
	mu         sync.Mutex
	configured bool
	result     domain.UpstreamResult
	err        error
	batches    []domain.Batch
}

func (f *fakeSender) Configured() bool {
	return f.configured
}

func (f *fakeSender) SendEvents(_ context.Context, batch domain.Batch) (domain.UpstreamResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return f.result, f.err
}

func (f *fakeSender) calls() []domain.Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Batch(nil), f.batches...)
}

type fakeWebhook struct {
	configured bool
	status     int
	err        error
	bodies     [][]byte
}

func (f *fakeWebhook) Configured() bool {
	return f.configured
}

func (f *fakeWebhook) Post(_ context.Context, body []byte) (int, error) {
	f.bodies = append(f.bodies, body)
	return f.status, f.err
}
