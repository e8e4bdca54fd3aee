package discord

import (
	"chatarchive-backend/internal/snowflake"
	"strconv"
	"testing"
	"time"
)

func TestNormalizeMessageDefaults(t *testing.T) {
	// a minimal wire record: every optional field absent
	message := normalizeMessage(42, wireMessage{
		ID:        "1000",
		Content:   "hello",
		Timestamp: "2024-05-01T10:30:00Z",
		Author:    wireUser{ID: "7", Username: "someone"},
	})

	if message.ID != 1000 {
		t.Errorf("got id %d, want 1000", message.ID)
	}
	if message.ChannelID != 42 {
		t.Errorf("got channel id %d, want 42", message.ChannelID)
	}
	if message.TimestampEdited != nil {
		t.Error("expected no edited timestamp")
	}
	if message.IsPinned {
		t.Error("pin flag should default to false")
	}
	if message.Author.Name != "someone" {
		t.Errorf("got author name %q, want %q", message.Author.Name, "someone")
	}
	if message.Author.Discriminator != "0" {
		t.Errorf("got discriminator %q, want %q", message.Author.Discriminator, "0")
	}

	// absent collections normalize to empty slices, never nil
	if message.Attachments == nil || message.Embeds == nil || message.Reactions == nil || message.Mentions == nil {
		t.Error("collections should be empty slices, not nil")
	}
}

func TestNormalizeMessageTimestamps(t *testing.T) {
	message := normalizeMessage(1, wireMessage{
		ID:              "2000",
		Timestamp:       "2024-05-01T10:30:00+02:00",
		EditedTimestamp: "2024-05-01T11:00:00Z",
		Author:          wireUser{ID: "7", Username: "someone"},
	})

	want := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	if !message.Timestamp.Equal(want) {
		t.Errorf("got timestamp %v, want %v", message.Timestamp, want)
	}

	if message.TimestampEdited == nil {
		t.Fatal("expected an edited timestamp")
	}
	wantEdited := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	if !message.TimestampEdited.Equal(wantEdited) {
		t.Errorf("got edited timestamp %v, want %v", message.TimestampEdited, wantEdited)
	}
}

func TestNormalizeMessageTimestampFallback(t *testing.T) {
	id, err := snowflake.Generate()
	if err != nil {
		t.Fatal(err)
	}

	message := normalizeMessage(1, wireMessage{
		ID:     fmtUint(id),
		Author: wireUser{ID: "7", Username: "someone"},
	})

	if !message.Timestamp.Equal(snowflake.ExtractTime(id)) {
		t.Errorf("got timestamp %v, want snowflake time %v", message.Timestamp, snowflake.ExtractTime(id))
	}
}

func TestNormalizeAttachmentMediaKinds(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		fileName    string
		isImage     bool
		isVideo     bool
		isAudio     bool
		isSpoiler   bool
	}{
		{
			name:        "Image attachment",
			contentType: "image/png",
			fileName:    "cat.png",
			isImage:     true,
		},
		{
			name:        "Video attachment",
			contentType: "video/mp4",
			fileName:    "clip.mp4",
			isVideo:     true,
		},
		{
			name:        "Audio attachment",
			contentType: "audio/ogg",
			fileName:    "voice.ogg",
			isAudio:     true,
		},
		{
			name:        "Unknown content type is a generic file",
			contentType: "application/zip",
			fileName:    "stuff.zip",
		},
		{
			name:     "Missing content type is a generic file",
			fileName: "unknown.bin",
		},
		{
			name:        "Spoiler prefix",
			contentType: "image/png",
			fileName:    "SPOILER_cat.png",
			isImage:     true,
			isSpoiler:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			attachment := normalizeAttachment(wireAttachment{
				ID:          "5",
				Filename:    tc.fileName,
				ContentType: tc.contentType,
			})

			if attachment.IsImage != tc.isImage || attachment.IsVideo != tc.isVideo || attachment.IsAudio != tc.isAudio {
				t.Errorf("got flags image=%t video=%t audio=%t", attachment.IsImage, attachment.IsVideo, attachment.IsAudio)
			}
			if attachment.IsSpoiler != tc.isSpoiler {
				t.Errorf("got spoiler=%t, want %t", attachment.IsSpoiler, tc.isSpoiler)
			}
		})
	}
}

func TestNormalizeChannelDMName(t *testing.T) {
	channel := normalizeChannel(wireChannel{
		ID:   "9",
		Type: 3,
		Recipients: []wireUser{
			{ID: "1", Username: "alice"},
			{ID: "2", Username: "bob"},
		},
	})

	if channel.Name != "alice, bob" {
		t.Errorf("got channel name %q, want %q", channel.Name, "alice, bob")
	}
}

func TestNormalizeAuthorPrefersGlobalName(t *testing.T) {
	author := normalizeAuthor(wireUser{ID: "7", Username: "someone", GlobalName: "Some One"})
	if author.Name != "Some One" {
		t.Errorf("got author name %q, want %q", author.Name, "Some One")
	}
}

func fmtUint(value uint64) string {
	return strconv.FormatUint(value, 10)
}
