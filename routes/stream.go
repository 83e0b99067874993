package routes

import (
	"context"
	"io"
	"sync"
)

// ChunkStream is a lazy, pull-based producer of stream units. Next returns
// io.EOF once the stream is exhausted; every chunk is consumed exactly once.
// Close releases the upstream producer and is safe to call more than once.
type ChunkStream interface {
	Next(ctx context.Context) (any, error)
	Close() error
}

// Streamer is implemented by handler results that expose their chunk source
// indirectly instead of being a ChunkStream themselves.
type Streamer interface {
	Chunks() ChunkStream
}

// SliceStream returns a ChunkStream that yields the given chunks in order.
func SliceStream(chunks ...any) ChunkStream {
	return &sliceStream{chunks: chunks}
}

type sliceStream struct {
	mu     sync.Mutex
	chunks []any
	pos    int
	closed bool
}

func (s *sliceStream) Next(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *sliceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ChanStream returns a ChunkStream fed by ch. The stream ends when ch is
// closed; Close stops consumption without draining the channel.
func ChanStream(ch <-chan any) ChunkStream {
	return &chanStream{ch: ch, done: make(chan struct{})}
}

type chanStream struct {
	ch        <-chan any
	done      chan struct{}
	closeOnce sync.Once
}

func (s *chanStream) Next(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, io.EOF
	case c, ok := <-s.ch:
		if !ok {
			return nil, io.EOF
		}
		return c, nil
	}
}

func (s *chanStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
