package archive_test

import (
	"chatarchive-backend/internal/archive"
	"chatarchive-backend/internal/models"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func testMessages(count int) []models.Message {
	messages := make([]models.Message, 0, count)
	for i := range count {
		messages = append(messages, models.Message{
			ID:          uint64(i + 1),
			ChannelID:   42,
			Timestamp:   time.Date(2024, 5, 1, 10, 0, i, 0, time.UTC),
			Content:     "hello",
			Author:      models.Author{ID: 7, Name: "someone", Discriminator: "0"},
			Attachments: []models.Attachment{},
			Embeds:      []models.Embed{},
			Reactions:   []models.Reaction{},
			Mentions:    []models.Mention{},
		})
	}
	return messages
}

func TestBuildMetadata(t *testing.T) {
	exportTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	writer := archive.NewWriter(clockwork.NewFakeClockAt(exportTime))

	channel := models.Channel{ID: 42, Name: "general"}
	doc, err := writer.Build(testMessages(3), &channel, nil, models.ExportOptions{Media: true})
	if err != nil {
		t.Fatal(err)
	}

	if doc.Metadata.ExportDate != "2024-06-01T12:00:00Z" {
		t.Errorf("got exportDate %q, want %q", doc.Metadata.ExportDate, "2024-06-01T12:00:00Z")
	}
	if doc.Metadata.Format != "Json" {
		t.Errorf("got format %q, want default %q", doc.Metadata.Format, "Json")
	}
	if !doc.Metadata.Media {
		t.Error("media option was not echoed into metadata")
	}
	if len(doc.Channels) != 1 || doc.Channels[0].MessageCount != 3 {
		t.Errorf("channel descriptor not labeled with message count: %+v", doc.Channels)
	}
	if doc.Guild != nil {
		t.Error("expected no guild descriptor")
	}
}

func TestBuildNilMessages(t *testing.T) {
	writer := archive.NewWriter(clockwork.NewFakeClock())

	doc, err := writer.Build(nil, nil, nil, models.ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if doc.Messages == nil {
		t.Error("messages must always be an array, even when empty")
	}
	if doc.Channels == nil {
		t.Error("channels must always be an array, even when empty")
	}
}

func TestBuildMalformedRecord(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(messages []models.Message)
	}{
		{
			name:   "Missing id",
			mangle: func(messages []models.Message) { messages[1].ID = 0 },
		},
		{
			name:   "Missing timestamp",
			mangle: func(messages []models.Message) { messages[1].Timestamp = time.Time{} },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			writer := archive.NewWriter(clockwork.NewFakeClock())

			messages := testMessages(3)
			tc.mangle(messages)

			doc, err := writer.Build(messages, nil, nil, models.ExportOptions{})
			if doc != nil {
				t.Error("expected no document for malformed input")
			}

			var malformedErr *archive.MalformedRecordError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("expected a MalformedRecordError, got %v", err)
			}
			if malformedErr.Index != 1 {
				t.Errorf("got index %d, want 1", malformedErr.Index)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	exportTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	writer := archive.NewWriter(clockwork.NewFakeClockAt(exportTime))

	fileName := writer.FileName(42)
	if !strings.HasPrefix(fileName, "discord-export-42-") || !strings.HasSuffix(fileName, ".json") {
		t.Errorf("unexpected file name %q", fileName)
	}
}
