package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "working")
	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked")
	}
}

func TestSpinnerAnimates(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "working")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	if !bytes.Contains(buf.Bytes(), []byte("working")) {
		t.Errorf("spinner output = %q, want the message", buf.String())
	}
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &bytes.Buffer{}, "working")
	s.Start()
	if s.Cancelled() {
		t.Error("Cancelled() = true before cancel")
	}
	cancel()
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after cancel")
	}
}

func TestSpin(t *testing.T) {
	got, err := spin(context.Background(), "counting", func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("spin() = %d, %v, want 42, nil", got, err)
	}
	want := errors.New("boom")
	if _, err := spin(context.Background(), "failing", func() (int, error) { return 0, want }); !errors.Is(err, want) {
		t.Errorf("spin() error = %v, want %v", err, want)
	}
}
