package input

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// TestTerminalKeySourceDecodesStream verifies keys are read and decoded in order.
func TestTerminalKeySourceDecodesStream(t *testing.T) {
	src := NewTerminalKeySource(strings.NewReader("hi\x1b[A"))
	ctx := context.Background()
	var got []string
	for range 3 {
		k, ok, err := src.Poll(ctx, time.Second)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if !ok {
			t.Fatal("expected key before timeout")
		}
		got = append(got, k.String())
	}
	if strings.Join(got, ",") != "h,i,up" {
		t.Fatalf("unexpected keys %v", got)
	}

	_, _, err := src.Poll(ctx, time.Second)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after stream ends, got %v", err)
	}
}

// TestTerminalKeySourceTimeout verifies Poll returns without a key after the timeout.
func TestTerminalKeySourceTimeout(t *testing.T) {
	r, w := io.Pipe()
	t.Cleanup(func() {
		_ = w.Close()
	})
	src := NewTerminalKeySource(r)
	_, ok, err := src.Poll(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if ok {
		t.Fatal("expected no key")
	}
	if err := src.Pause(); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if err := src.Pause(); err != nil {
		t.Fatalf("second Pause() error = %v", err)
	}
}

// TestTerminalKeySourceJoinsSplitReads verifies a sequence spread over two reads still decodes.
func TestTerminalKeySourceJoinsSplitReads(t *testing.T) {
	src := NewTerminalKeySource(io.MultiReader(
		strings.NewReader("\x1b["),
		strings.NewReader("Bz\xc3"),
		strings.NewReader("\xa9"),
	))
	var got []string
	for range 3 {
		k, ok, err := src.Poll(context.Background(), time.Second)
		if err != nil || !ok {
			t.Fatalf("Poll() = %v, %v", ok, err)
		}
		got = append(got, k.String())
	}
	if strings.Join(got, ",") != "down,z,é" {
		t.Fatalf("unexpected keys %v", got)
	}
}
