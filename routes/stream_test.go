package routes_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aymaneallaoui/elysia-mastra-adapter/routes"
)

func TestSliceStream(t *testing.T) {
	s := routes.SliceStream(1, 2, 3)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		c, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if c != want {
			t.Fatalf("chunk: want %d got %v", want, c)
		}
	}
	if _, err := s.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF got %v", err)
	}
}

func TestSliceStreamCloseStopsProduction(t *testing.T) {
	s := routes.SliceStream(1, 2)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("closed stream must report io.EOF, got %v", err)
	}
}

func TestSliceStreamObservesCancellation(t *testing.T) {
	s := routes.SliceStream(1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled got %v", err)
	}
}

func TestChanStream(t *testing.T) {
	ch := make(chan any, 2)
	ch <- "a"
	ch <- "b"
	close(ch)

	s := routes.ChanStream(ch)
	ctx := context.Background()

	if c, err := s.Next(ctx); err != nil || c != "a" {
		t.Fatalf("first chunk: %v %v", c, err)
	}
	if c, err := s.Next(ctx); err != nil || c != "b" {
		t.Fatalf("second chunk: %v %v", c, err)
	}
	if _, err := s.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF got %v", err)
	}
}

func TestChanStreamClose(t *testing.T) {
	ch := make(chan any)
	s := routes.ChanStream(ch)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("closed stream must report io.EOF, got %v", err)
	}
}
