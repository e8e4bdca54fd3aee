package discord

import (
	"chatarchive-backend/internal/models"
	"chatarchive-backend/internal/snowflake"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const cdnBaseUrl = "https://cdn.discordapp.com"

// Normalization happens once, at this boundary. Every optional wire field
// maps to an explicit zero value or pointer so downstream code never has to
// re-check wire shape. Flags default to false/0, never null.

func parseID(id string) uint64 {
	parsed, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// parseTimestamp falls back to the time embedded in the message id when the
// wire timestamp is missing or unparsable.
func parseTimestamp(value string, id uint64) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return snowflake.ExtractTime(id)
	}
	return parsed.UTC()
}

func avatarUrl(userID string, avatar string) string {
	if avatar == "" {
		return ""
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBaseUrl, userID, avatar)
}

func normalizeAuthor(user wireUser) models.Author {
	name := user.GlobalName
	if name == "" {
		name = user.Username
	}

	discriminator := user.Discriminator
	if discriminator == "" {
		discriminator = "0"
	}

	return models.Author{
		ID:            parseID(user.ID),
		Name:          name,
		Discriminator: discriminator,
		IsBot:         user.Bot,
		AvatarUrl:     avatarUrl(user.ID, user.Avatar),
	}
}

func normalizeAttachment(attachment wireAttachment) models.Attachment {
	return models.Attachment{
		ID:            parseID(attachment.ID),
		Url:           attachment.Url,
		FileName:      attachment.Filename,
		FileSizeBytes: attachment.Size,
		Width:         attachment.Width,
		Height:        attachment.Height,
		ContentType:   attachment.ContentType,
		IsSpoiler:     strings.HasPrefix(attachment.Filename, "SPOILER_"),
		IsImage:       strings.HasPrefix(attachment.ContentType, "image/"),
		IsVideo:       strings.HasPrefix(attachment.ContentType, "video/"),
		IsAudio:       strings.HasPrefix(attachment.ContentType, "audio/"),
	}
}

func normalizeEmbed(embed wireEmbed) models.Embed {
	normalized := models.Embed{
		Title:       embed.Title,
		Description: embed.Description,
		Url:         embed.Url,
		Color:       embed.Color,
		Fields:      []models.EmbedField{},
	}

	if embed.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, embed.Timestamp); err == nil {
			utc := parsed.UTC()
			normalized.Timestamp = &utc
		}
	}

	if embed.Footer != nil {
		normalized.Footer = &models.EmbedFooter{Text: embed.Footer.Text, IconUrl: embed.Footer.IconUrl}
	}
	if embed.Image != nil {
		normalized.Image = &models.EmbedImage{Url: embed.Image.Url, Width: embed.Image.Width, Height: embed.Image.Height}
	}
	if embed.Thumbnail != nil {
		normalized.Thumbnail = &models.EmbedImage{Url: embed.Thumbnail.Url, Width: embed.Thumbnail.Width, Height: embed.Thumbnail.Height}
	}
	if embed.Author != nil {
		normalized.Author = &models.EmbedAuthor{Name: embed.Author.Name, Url: embed.Author.Url, IconUrl: embed.Author.IconUrl}
	}

	for _, field := range embed.Fields {
		normalized.Fields = append(normalized.Fields, models.EmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	return normalized
}

func normalizeReaction(reaction wireReaction) models.Reaction {
	emoji := models.Emoji{
		ID:         parseID(reaction.Emoji.ID),
		Name:       reaction.Emoji.Name,
		IsAnimated: reaction.Emoji.Animated,
	}
	if emoji.ID != 0 {
		emoji.ImageUrl = fmt.Sprintf("%s/emojis/%s.png", cdnBaseUrl, reaction.Emoji.ID)
	}

	return models.Reaction{Emoji: emoji, Count: reaction.Count}
}

func normalizeMention(user wireUser) models.Mention {
	author := normalizeAuthor(user)
	return models.Mention{
		ID:            author.ID,
		Name:          author.Name,
		Discriminator: author.Discriminator,
		IsBot:         author.IsBot,
		AvatarUrl:     author.AvatarUrl,
	}
}

func normalizeMessage(channelID uint64, message wireMessage) models.Message {
	id := parseID(message.ID)

	normalized := models.Message{
		ID:          id,
		Type:        message.Type,
		ChannelID:   channelID,
		Timestamp:   parseTimestamp(message.Timestamp, id),
		IsPinned:    message.Pinned,
		Content:     message.Content,
		Author:      normalizeAuthor(message.Author),
		Attachments: []models.Attachment{},
		Embeds:      []models.Embed{},
		Reactions:   []models.Reaction{},
		Mentions:    []models.Mention{},
	}

	if message.EditedTimestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, message.EditedTimestamp); err == nil {
			utc := parsed.UTC()
			normalized.TimestampEdited = &utc
		}
	}

	for _, attachment := range message.Attachments {
		normalized.Attachments = append(normalized.Attachments, normalizeAttachment(attachment))
	}
	for _, embed := range message.Embeds {
		normalized.Embeds = append(normalized.Embeds, normalizeEmbed(embed))
	}
	for _, reaction := range message.Reactions {
		normalized.Reactions = append(normalized.Reactions, normalizeReaction(reaction))
	}
	for _, mention := range message.Mentions {
		normalized.Mentions = append(normalized.Mentions, normalizeMention(mention))
	}

	if message.MessageRef != nil {
		normalized.ReferencedMessageID = parseID(message.MessageRef.MessageID)
	}

	return normalized
}

func normalizeChannel(channel wireChannel) models.Channel {
	name := channel.Name
	if name == "" && len(channel.Recipients) > 0 {
		names := make([]string, 0, len(channel.Recipients))
		for _, recipient := range channel.Recipients {
			names = append(names, recipient.Username)
		}
		name = strings.Join(names, ", ")
	}

	return models.Channel{
		ID:      parseID(channel.ID),
		Type:    channel.Type,
		GuildID: parseID(channel.GuildID),
		Name:    name,
		Topic:   channel.Topic,
	}
}

func normalizeGuild(guild wireGuild) models.Guild {
	normalized := models.Guild{
		ID:          parseID(guild.ID),
		Name:        guild.Name,
		Description: guild.Description,
		MemberCount: guild.ApproximateMemberCount,
	}
	if guild.Icon != "" {
		normalized.IconUrl = fmt.Sprintf("%s/icons/%s/%s.png", cdnBaseUrl, guild.ID, guild.Icon)
	}
	return normalized
}
