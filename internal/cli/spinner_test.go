package cli

import (
	"context"
	"testing"
)

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), "working")
	s.Stop() // must not panic or block
}

func TestSpinnerDoubleStop(t *testing.T) {
	s := newSpinner(context.Background(), "working")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStartAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newSpinner(ctx, "working")
	s.Start()
	s.Stop()
}
