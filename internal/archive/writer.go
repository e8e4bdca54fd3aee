package archive

import (
	"chatarchive-backend/internal/models"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

const formatVersion = "1.0.0"

// MalformedRecordError means a message that should have been normalized
// upstream reached the writer in a broken state. It is a contract violation,
// the export attempt is abandoned before any output is produced.
type MalformedRecordError struct {
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed message record at index %d: %s", e.Index, e.Reason)
}

// Writer assembles archive documents and serializes them. It performs no I/O
// itself, the caller hands the bytes to whatever saves them.
type Writer struct {
	clock clockwork.Clock
}

func NewWriter(clock clockwork.Clock) *Writer {
	return &Writer{clock: clock}
}

func (w *Writer) Build(messages []models.Message, channel *models.Channel, guild *models.Guild, opts models.ExportOptions) (*models.ArchiveDocument, error) {
	for i, message := range messages {
		if message.ID == 0 {
			return nil, &MalformedRecordError{Index: i, Reason: "missing id"}
		}
		if message.Timestamp.IsZero() {
			return nil, &MalformedRecordError{Index: i, Reason: "missing timestamp"}
		}
	}

	format := opts.Format
	if format == "" {
		format = "Json"
	}

	includeThreads := opts.IncludeThreads
	if includeThreads == "" {
		includeThreads = "None"
	}

	doc := &models.ArchiveDocument{
		Metadata: models.ArchiveMetadata{
			ExportDate:     w.clock.Now().UTC().Format(time.RFC3339),
			Version:        formatVersion,
			Format:         format,
			Media:          opts.Media,
			ReuseMedia:     opts.ReuseMedia,
			Markdown:       opts.Markdown,
			IncludeThreads: includeThreads,
		},
		Messages: messages,
		Channels: []models.Channel{},
		Guild:    guild,
	}

	if doc.Messages == nil {
		doc.Messages = []models.Message{}
	}

	if channel != nil {
		labeled := *channel
		labeled.MessageCount = len(messages)
		doc.Channels = append(doc.Channels, labeled)
	}

	return doc, nil
}

func (w *Writer) Serialize(doc *models.ArchiveDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// FileName suggests a download name for an exported channel.
func (w *Writer) FileName(channelID uint64) string {
	return fmt.Sprintf("discord-export-%d-%d.json", channelID, w.clock.Now().UnixMilli())
}
