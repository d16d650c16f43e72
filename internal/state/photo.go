package state

import (
	"context"
	"sync"
)

// photoReads tracks uploaded-image reads that have not completed yet.
type photoReads struct {
	mu       sync.Mutex
	inflight int
	idle     chan struct{}
}

// BeginPhotoRead registers an in-flight photo read. The returned func must be
// called exactly once when the read has finished, successfully or not.
func (s *Store) BeginPhotoRead() (done func()) {
	p := &s.photo
	p.mu.Lock()
	if p.inflight == 0 {
		p.idle = make(chan struct{})
	}
	p.inflight++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.inflight--
			if p.inflight == 0 {
				close(p.idle)
			}
		})
	}
}

// WaitPhoto blocks until no photo read is in flight or ctx ends.
func (s *Store) WaitPhoto(ctx context.Context) error {
	p := &s.photo
	p.mu.Lock()
	if p.inflight == 0 {
		p.mu.Unlock()
		return nil
	}
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PhotoReadPending reports whether a photo read is in flight.
func (s *Store) PhotoReadPending() bool {
	s.photo.mu.Lock()
	defer s.photo.mu.Unlock()
	return s.photo.inflight > 0
}
