package discord_test

import (
	"chatarchive-backend/internal/discord"
	"chatarchive-backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// fakeRemote serves a fixed channel history of total messages with ids
// total..1, newest first, honoring limit and before the way the real
// service does.
type fakeRemote struct {
	total       int
	requests    []int // requested page sizes, in order
	status      int   // non-zero forces this status on every request
	failFrom    int   // fail requests starting at this index (1-based), 0 = never
	malformedID int   // this id is served as a non-numeric string, 0 = never
}

func (f *fakeRemote) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, 0)
		requestIndex := len(f.requests)

		if f.status != 0 && (f.failFrom == 0 || requestIndex >= f.failFrom) {
			w.WriteHeader(f.status)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		f.requests[requestIndex-1] = limit

		before := f.total + 1
		if value := r.URL.Query().Get("before"); value != "" {
			before, _ = strconv.Atoi(value)
		}

		page := []map[string]any{}
		for id := before - 1; id >= 1 && len(page) < limit; id-- {
			wireID := strconv.Itoa(id)
			if id == f.malformedID {
				wireID = "not-a-snowflake"
			}
			page = append(page, map[string]any{
				"id":        wireID,
				"content":   fmt.Sprintf("message %d", id),
				"timestamp": time.Unix(int64(id), 0).UTC().Format(time.RFC3339),
				"author":    map[string]any{"id": "1", "username": "tester"},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}
}

func newTestRetriever(t *testing.T, remote *fakeRemote, pageCap int, delay time.Duration, clock clockwork.Clock) *discord.Retriever {
	t.Helper()

	server := httptest.NewServer(remote.handler())
	t.Cleanup(server.Close)

	return discord.NewRetriever(discord.NewClient(server.URL), pageCap, delay, clock)
}

func checkOldestFirstUnique(t *testing.T, messages []models.Message) {
	t.Helper()

	seen := make(map[uint64]struct{})
	for i, message := range messages {
		if _, duplicate := seen[message.ID]; duplicate {
			t.Errorf("duplicate message id %d", message.ID)
		}
		seen[message.ID] = struct{}{}

		if i > 0 && messages[i-1].ID >= message.ID {
			t.Errorf("messages not ordered oldest first at index %d: %d then %d", i, messages[i-1].ID, message.ID)
		}
	}
}

func TestFetchStopsOnShortPage(t *testing.T) {
	remote := &fakeRemote{total: 250}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 1000, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(messages) != 250 {
		t.Errorf("got %d messages, want 250", len(messages))
	}
	if len(remote.requests) != 3 {
		t.Errorf("made %d requests, want 3", len(remote.requests))
	}
	for i, limit := range remote.requests {
		if limit != 100 {
			t.Errorf("request %d asked for %d messages, want 100", i, limit)
		}
	}

	checkOldestFirstUnique(t, messages)
}

func TestFetchThreePartialPages(t *testing.T) {
	remote := &fakeRemote{total: 240}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 300, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(messages) != 240 {
		t.Fatalf("got %d messages, want 240", len(messages))
	}

	checkOldestFirstUnique(t, messages)

	// the last element is the newest message of the first page
	if messages[len(messages)-1].ID != 240 {
		t.Errorf("last message id is %d, want 240", messages[len(messages)-1].ID)
	}
	if messages[0].ID != 1 {
		t.Errorf("first message id is %d, want 1", messages[0].ID)
	}
}

func TestFetchTruncatesToLimit(t *testing.T) {
	remote := &fakeRemote{total: 250}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 120, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(messages) != 120 {
		t.Fatalf("got %d messages, want 120", len(messages))
	}
	if len(remote.requests) != 2 {
		t.Errorf("made %d requests, want 2", len(remote.requests))
	}
	if remote.requests[0] != 100 || remote.requests[1] != 20 {
		t.Errorf("requested page sizes %v, want [100 20]", remote.requests)
	}

	checkOldestFirstUnique(t, messages)

	// the newest 120 messages of the channel, oldest first
	if messages[0].ID != 131 || messages[len(messages)-1].ID != 250 {
		t.Errorf("got id range [%d, %d], want [131, 250]", messages[0].ID, messages[len(messages)-1].ID)
	}
}

func TestFetchBeforeCursor(t *testing.T) {
	remote := &fakeRemote{total: 250}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 50, 101, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(messages) != 50 {
		t.Fatalf("got %d messages, want 50", len(messages))
	}
	if messages[0].ID != 51 || messages[len(messages)-1].ID != 100 {
		t.Errorf("got id range [%d, %d], want [51, 100]", messages[0].ID, messages[len(messages)-1].ID)
	}
}

func TestFetchEmptyChannel(t *testing.T) {
	remote := &fakeRemote{total: 0}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 100, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(messages) != 0 {
		t.Errorf("got %d messages, want 0", len(messages))
	}
	if len(remote.requests) != 1 {
		t.Errorf("made %d requests, want 1", len(remote.requests))
	}
}

func TestFetchSurfacesRetrievalError(t *testing.T) {
	remote := &fakeRemote{total: 250, status: http.StatusInternalServerError}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 100, 0, nil)
	if err == nil {
		t.Fatal("expected an error, got none")
	}

	var retrievalErr *discord.RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("expected a RetrievalError, got %T", err)
	}
	if retrievalErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", retrievalErr.StatusCode, http.StatusInternalServerError)
	}
	if messages != nil {
		t.Errorf("expected no partial results, got %d messages", len(messages))
	}
}

func TestFetchDiscardsPartialsOnMidLoopError(t *testing.T) {
	remote := &fakeRemote{total: 250, status: http.StatusForbidden, failFrom: 2}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 1000, 0, nil)
	if err == nil {
		t.Fatal("expected an error, got none")
	}
	if messages != nil {
		t.Errorf("expected no partial results, got %d messages", len(messages))
	}
}

func TestFetchAbortsOnMalformedCursorID(t *testing.T) {
	// ids 200..101 fill the first page, so the malformed id 101 becomes the
	// cursor for the second request
	remote := &fakeRemote{total: 200, malformedID: 101}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	messages, err := retriever.FetchMessages(context.Background(), "token", 1, 200, 0, nil)
	if err == nil {
		t.Fatal("expected an error, got none")
	}
	if messages != nil {
		t.Errorf("expected no partial results, got %d messages", len(messages))
	}
	if len(remote.requests) != 1 {
		t.Errorf("made %d requests, want 1: a broken cursor must not refetch from the top", len(remote.requests))
	}
}

func TestFetchCancellation(t *testing.T) {
	remote := &fakeRemote{total: 250}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	messages, err := retriever.FetchMessages(ctx, "token", 1, 100, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if messages != nil {
		t.Errorf("expected no partial results, got %d messages", len(messages))
	}
}

func TestFetchReportsProgress(t *testing.T) {
	remote := &fakeRemote{total: 240}
	retriever := newTestRetriever(t, remote, 100, 0, clockwork.NewRealClock())

	var progress []int
	_, err := retriever.FetchMessages(context.Background(), "token", 1, 300, 0, func(fetched int) {
		progress = append(progress, fetched)
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []int{100, 200, 240}
	if len(progress) != len(want) {
		t.Fatalf("got progress %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("got progress %v, want %v", progress, want)
			break
		}
	}
}

func TestFetchWaitsBetweenPages(t *testing.T) {
	remote := &fakeRemote{total: 250}
	clock := clockwork.NewFakeClock()
	retriever := newTestRetriever(t, remote, 100, time.Second, clock)

	type result struct {
		messages []models.Message
		err      error
	}
	done := make(chan result, 1)

	go func() {
		messages, err := retriever.FetchMessages(context.Background(), "token", 1, 1000, 0, nil)
		done <- result{messages, err}
	}()

	// two full pages, so the loop sleeps twice before the short third page
	for range 2 {
		clock.BlockUntil(1)
		clock.Advance(time.Second)
	}

	res := <-done
	if res.err != nil {
		t.Fatal(res.err)
	}
	if len(res.messages) != 250 {
		t.Errorf("got %d messages, want 250", len(res.messages))
	}
}
