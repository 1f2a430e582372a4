package copier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestFetcher(client Client) *Fetcher {
	return &Fetcher{
		client:   client,
		attempts: 3,
		timeout:  time.Second,
		backoff:  time.Millisecond,
	}
}

func TestFetcherReturnsMessage(t *testing.T) {
	fc := newFakeClient()
	fc.addText(10, "hello")

	msg, err := newTestFetcher(fc).Fetch(context.Background(), ChatRef{ID: -1001}, 10)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if msg.Text != "hello" {
		t.Errorf("Fetch() text = %q, want %q", msg.Text, "hello")
	}
	if fc.fetchCalls[10] != 1 {
		t.Errorf("fetch calls = %d, want 1", fc.fetchCalls[10])
	}
}

func TestFetcherMissingMessageNotRetried(t *testing.T) {
	fc := newFakeClient()

	_, err := newTestFetcher(fc).Fetch(context.Background(), ChatRef{ID: -1001}, 42)
	if !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("Fetch() error = %v, want ErrMessageNotFound", err)
	}
	if fc.fetchCalls[42] != 1 {
		t.Errorf("fetch calls = %d, want 1 (missing message should not be retried)", fc.fetchCalls[42])
	}
}

func TestFetcherRetriesTransientErrors(t *testing.T) {
	fc := newFakeClient()
	fc.addText(7, "eventually")
	fc.transient[7] = 2

	msg, err := newTestFetcher(fc).Fetch(context.Background(), ChatRef{ID: -1001}, 7)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if msg.Text != "eventually" {
		t.Errorf("Fetch() text = %q, want %q", msg.Text, "eventually")
	}
	if fc.fetchCalls[7] != 3 {
		t.Errorf("fetch calls = %d, want 3", fc.fetchCalls[7])
	}
}

func TestFetcherGivesUpAfterAttempts(t *testing.T) {
	fc := newFakeClient()
	fc.addText(8, "never")
	fc.transient[8] = 10

	_, err := newTestFetcher(fc).Fetch(context.Background(), ChatRef{ID: -1001}, 8)
	if err == nil {
		t.Fatal("Fetch() error = nil, want retry exhaustion error")
	}
	if errors.Is(err, ErrMessageNotFound) {
		t.Fatal("Fetch() returned ErrMessageNotFound for a transient error")
	}
	if fc.fetchCalls[8] != 3 {
		t.Errorf("fetch calls = %d, want 3", fc.fetchCalls[8])
	}
}

func TestFetcherStopsOnContextCancel(t *testing.T) {
	fc := newFakeClient()
	fc.addText(9, "cancelled")
	fc.transient[9] = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(fc).Fetch(ctx, ChatRef{ID: -1001}, 9)
	if err == nil {
		t.Fatal("Fetch() error = nil, want context error")
	}
}
