package discord

import (
	"chatarchive-backend/internal/models"
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// Retriever runs the sequential cursor-paginated fetch loop for one channel.
// Calls for the same channel must be serialized by the caller; the loop
// itself never runs pages concurrently because the cursor of each request
// comes from the previous page.
type Retriever struct {
	client  *Client
	pageCap int
	delay   time.Duration
	clock   clockwork.Clock
}

func NewRetriever(client *Client, pageCap int, delay time.Duration, clock clockwork.Clock) *Retriever {
	if pageCap <= 0 {
		pageCap = 100
	}
	return &Retriever{
		client:  client,
		pageCap: pageCap,
		delay:   delay,
		clock:   clock,
	}
}

// FetchMessages returns at most limit messages ordered oldest first.
// before == 0 starts from the newest message in the channel.
//
// Any page failure or cancellation discards everything accumulated so far;
// a call either returns the full requested window or nothing.
func (rt *Retriever) FetchMessages(ctx context.Context, token string, channelID uint64, limit int, before uint64, progress func(fetched int)) ([]models.Message, error) {
	// accumulated newest first, reversed once at the end
	messages := make([]models.Message, 0, min(limit, rt.pageCap))
	cursor := before

	for len(messages) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageSize := min(rt.pageCap, limit-len(messages))

		page, err := rt.client.Messages(ctx, token, channelID, pageSize, cursor)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		for _, wire := range page {
			messages = append(messages, normalizeMessage(channelID, wire))
		}

		if progress != nil {
			progress(len(messages))
		}

		// a short page means this was the oldest history
		if len(page) < pageSize {
			break
		}

		cursor = messages[len(messages)-1].ID

		// a zero cursor would restart the loop from the newest message and
		// duplicate records
		if cursor == 0 {
			return nil, errors.New("message on page boundary has an invalid id")
		}

		if len(messages) >= limit {
			break
		}

		if err := rt.wait(ctx); err != nil {
			return nil, err
		}
	}

	if len(messages) > limit {
		messages = messages[:limit]
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// wait inserts the inter-page delay the remote service's rate limiting asks
// for. The clock is injected so tests don't sleep for real.
func (rt *Retriever) wait(ctx context.Context) error {
	if rt.delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rt.clock.After(rt.delay):
		return nil
	}
}
