package archive

import (
	"chatarchive-backend/internal/models"
	"chatarchive-backend/internal/snowflake"
	"time"
)

// Sample builds a small self-contained archive for demonstrating the viewer
// without a remote account.
func Sample(writer *Writer) (*models.ArchiveDocument, error) {
	channelID, err := snowflake.Generate()
	if err != nil {
		return nil, err
	}

	authors := []models.Author{
		{ID: 1, Name: "ServerAdmin", Discriminator: "0001"},
		{ID: 2, Name: "NewMember", Discriminator: "0002"},
		{ID: 3, Name: "RegularUser", Discriminator: "0003"},
	}

	contents := []string{
		"Hello everyone! Welcome to the server!",
		"Thanks for having me here!",
		"How is everyone doing today?",
	}

	messages := make([]models.Message, 0, len(contents))
	base := time.Now().UTC().Add(-time.Hour)

	for i, content := range contents {
		id, err := snowflake.Generate()
		if err != nil {
			return nil, err
		}

		messages = append(messages, models.Message{
			ID:          id,
			ChannelID:   channelID,
			Timestamp:   base.Add(time.Duration(i) * 10 * time.Minute),
			Content:     content,
			Author:      authors[i],
			Attachments: []models.Attachment{},
			Embeds:      []models.Embed{},
			Reactions:   []models.Reaction{},
			Mentions:    []models.Mention{},
		})
	}

	channel := models.Channel{
		ID:    channelID,
		Name:  "general",
		Topic: "General discussion",
	}
	guild := models.Guild{
		ID:          1,
		Name:        "Sample Server",
		Description: "A sample server for demonstration",
	}

	return writer.Build(messages, &channel, &guild, models.ExportOptions{Format: "Json"})
}
