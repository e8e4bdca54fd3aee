package models

import "time"

// Author is denormalized into every message on purpose, an archive has no
// separate author table.
type Author struct {
	ID            uint64 `json:"id,string"`
	Name          string `json:"name"`
	Discriminator string `json:"discriminator"`
	Nickname      string `json:"nickname,omitempty"`
	IsBot         bool   `json:"isBot"`
	AvatarUrl     string `json:"avatarUrl,omitempty"`
}

type Attachment struct {
	ID            uint64 `json:"id,string"`
	Url           string `json:"url"`
	FileName      string `json:"fileName"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	IsSpoiler     bool   `json:"isSpoiler"`
	IsImage       bool   `json:"isImage"`
	IsVideo       bool   `json:"isVideo"`
	IsAudio       bool   `json:"isAudio"`
}

type EmbedFooter struct {
	Text    string `json:"text"`
	IconUrl string `json:"iconUrl,omitempty"`
}

type EmbedImage struct {
	Url    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	Url     string `json:"url,omitempty"`
	IconUrl string `json:"iconUrl,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Url         string       `json:"url,omitempty"`
	Timestamp   *time.Time   `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Fields      []EmbedField `json:"fields"`
}

type Emoji struct {
	ID         uint64 `json:"id,string,omitempty"`
	Name       string `json:"name"`
	IsAnimated bool   `json:"isAnimated"`
	ImageUrl   string `json:"imageUrl,omitempty"`
}

type Reaction struct {
	Emoji Emoji `json:"emoji"`
	Count int   `json:"count"`
}

type Mention struct {
	ID            uint64 `json:"id,string"`
	Name          string `json:"name"`
	Discriminator string `json:"discriminator"`
	IsBot         bool   `json:"isBot"`
	AvatarUrl     string `json:"avatarUrl,omitempty"`
}

// Message is the canonical, service-agnostic record. It is never mutated
// after normalization and its ID is unique within a channel.
type Message struct {
	ID                  uint64       `json:"id,string"`
	Type                int          `json:"type"`
	ChannelID           uint64       `json:"channelID,string"`
	Timestamp           time.Time    `json:"timestamp"`
	TimestampEdited     *time.Time   `json:"timestampEdited,omitempty"`
	IsPinned            bool         `json:"isPinned"`
	Content             string       `json:"content"`
	Author              Author       `json:"author"`
	Attachments         []Attachment `json:"attachments"`
	Embeds              []Embed      `json:"embeds"`
	Reactions           []Reaction   `json:"reactions"`
	Mentions            []Mention    `json:"mentions"`
	ReferencedMessageID uint64       `json:"referencedMessageID,string,omitempty"`
}

type Channel struct {
	ID           uint64 `json:"id,string"`
	Type         int    `json:"type"`
	GuildID      uint64 `json:"guildID,string,omitempty"`
	Name         string `json:"name"`
	Topic        string `json:"topic,omitempty"`
	MemberCount  int    `json:"memberCount,omitempty"`
	MessageCount int    `json:"messageCount"`
}

type Guild struct {
	ID          uint64 `json:"id,string"`
	Name        string `json:"name"`
	IconUrl     string `json:"iconUrl,omitempty"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`
}

// ExportOptions are echoed back into archive metadata so a viewer can tell
// how the archive was produced.
type ExportOptions struct {
	Format         string `json:"format"`
	Limit          int    `json:"limit"`
	Media          bool   `json:"media"`
	ReuseMedia     bool   `json:"reuseMedia"`
	Markdown       bool   `json:"markdown"`
	IncludeThreads string `json:"includeThreads"`
}

type ArchiveMetadata struct {
	ExportDate     string `json:"exportDate" validate:"required"`
	Version        string `json:"version,omitempty"`
	Format         string `json:"format" validate:"required"`
	Media          bool   `json:"media"`
	ReuseMedia     bool   `json:"reuseMedia"`
	Markdown       bool   `json:"markdown"`
	IncludeThreads string `json:"includeThreads,omitempty"`
}

// ArchiveDocument is the persisted unit. Metadata and the messages array are
// always present, channels and guild only label the archive.
type ArchiveDocument struct {
	Metadata ArchiveMetadata `json:"metadata"`
	Messages []Message       `json:"messages"`
	Channels []Channel       `json:"channels"`
	Guild    *Guild          `json:"guild,omitempty"`
}

type ExportSettings struct {
	DefaultFormat       string `json:"defaultFormat"`
	DefaultMessageLimit int    `json:"defaultMessageLimit"`
	IncludeMedia        bool   `json:"includeMedia"`
	IncludeEmbeds       bool   `json:"includeEmbeds"`
	IncludeReactions    bool   `json:"includeReactions"`
	IncludeThreads      string `json:"includeThreads"`
	ReuseMedia          bool   `json:"reuseMedia"`
	Markdown            bool   `json:"markdown"`
}

type DisplaySettings struct {
	Theme          string `json:"theme"`
	FontSize       string `json:"fontSize"`
	ShowImages     bool   `json:"showImages"`
	ShowEmbeds     bool   `json:"showEmbeds"`
	ShowReactions  bool   `json:"showReactions"`
	ShowTimestamps bool   `json:"showTimestamps"`
	CompactMode    bool   `json:"compactMode"`
}

type GeneralSettings struct {
	AutoSave      bool   `json:"autoSave"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

type AppSettings struct {
	Export  ExportSettings  `json:"export"`
	Display DisplaySettings `json:"display"`
	General GeneralSettings `json:"general"`
}
