package discord

import (
	"chatarchive-backend/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// RetrievalError is returned for any non-success page response. No retry is
// performed here, retry policy belongs to the caller.
type RetrievalError struct {
	StatusCode int
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("message retrieval failed with status %d", e.StatusCode)
}

type wireUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Bot           bool   `json:"bot"`
}

type wireAttachment struct {
	ID          string `json:"id"`
	Url         string `json:"url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}

type wireEmbedMedia struct {
	Url    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireEmbedFooter struct {
	Text    string `json:"text"`
	IconUrl string `json:"icon_url"`
}

type wireEmbedAuthor struct {
	Name    string `json:"name"`
	Url     string `json:"url"`
	IconUrl string `json:"icon_url"`
}

type wireEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type wireEmbed struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Url         string           `json:"url"`
	Timestamp   string           `json:"timestamp"`
	Color       int              `json:"color"`
	Footer      *wireEmbedFooter `json:"footer"`
	Image       *wireEmbedMedia  `json:"image"`
	Thumbnail   *wireEmbedMedia  `json:"thumbnail"`
	Author      *wireEmbedAuthor `json:"author"`
	Fields      []wireEmbedField `json:"fields"`
}

type wireEmoji struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Animated bool   `json:"animated"`
}

type wireReaction struct {
	Emoji wireEmoji `json:"emoji"`
	Count int       `json:"count"`
}

type wireMessageRef struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}

type wireMessage struct {
	ID              string           `json:"id"`
	Type            int              `json:"type"`
	Content         string           `json:"content"`
	Timestamp       string           `json:"timestamp"`
	EditedTimestamp string           `json:"edited_timestamp"`
	Pinned          bool             `json:"pinned"`
	Author          wireUser         `json:"author"`
	Attachments     []wireAttachment `json:"attachments"`
	Embeds          []wireEmbed      `json:"embeds"`
	Reactions       []wireReaction   `json:"reactions"`
	Mentions        []wireUser       `json:"mentions"`
	MessageRef      *wireMessageRef  `json:"message_reference"`
}

type wireChannel struct {
	ID         string     `json:"id"`
	Type       int        `json:"type"`
	GuildID    string     `json:"guild_id"`
	Name       string     `json:"name"`
	Topic      string     `json:"topic"`
	Recipients []wireUser `json:"recipients"`
}

type wireGuild struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Icon                   string `json:"icon"`
	Description            string `json:"description"`
	ApproximateMemberCount int    `json:"approximate_member_count"`
}

// Client talks to the remote chat service's read API. The base URL is
// configurable so tests can point it at a local server.
type Client struct {
	baseUrl string
	client  *http.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		baseUrl: baseUrl,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, token string, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RetrievalError{StatusCode: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Me validates a token by fetching the account it belongs to.
func (c *Client) Me(ctx context.Context, token string) (*models.Author, error) {
	var user wireUser
	if err := c.get(ctx, token, "/users/@me", &user); err != nil {
		return nil, err
	}
	author := normalizeAuthor(user)
	return &author, nil
}

func (c *Client) Guilds(ctx context.Context, token string) ([]models.Guild, error) {
	var wireGuilds []wireGuild
	if err := c.get(ctx, token, "/users/@me/guilds", &wireGuilds); err != nil {
		return nil, err
	}

	guilds := make([]models.Guild, 0, len(wireGuilds))
	for _, guild := range wireGuilds {
		guilds = append(guilds, normalizeGuild(guild))
	}
	return guilds, nil
}

func (c *Client) GuildChannels(ctx context.Context, token string, guildID uint64) ([]models.Channel, error) {
	var wireChannels []wireChannel
	if err := c.get(ctx, token, fmt.Sprintf("/guilds/%d/channels", guildID), &wireChannels); err != nil {
		return nil, err
	}

	channels := make([]models.Channel, 0, len(wireChannels))
	for _, channel := range wireChannels {
		channels = append(channels, normalizeChannel(channel))
	}
	return channels, nil
}

// DMChannels returns direct and group direct channels only.
func (c *Client) DMChannels(ctx context.Context, token string) ([]models.Channel, error) {
	var wireChannels []wireChannel
	if err := c.get(ctx, token, "/users/@me/channels", &wireChannels); err != nil {
		return nil, err
	}

	dms := make([]models.Channel, 0, len(wireChannels))
	for _, channel := range wireChannels {
		if channel.Type == 1 || channel.Type == 3 {
			dms = append(dms, normalizeChannel(channel))
		}
	}
	return dms, nil
}

// Messages requests one page of up to limit messages strictly older than
// before, newest first. before == 0 means no cursor.
func (c *Client) Messages(ctx context.Context, token string, channelID uint64, limit int, before uint64) ([]wireMessage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != 0 {
		query.Set("before", strconv.FormatUint(before, 10))
	}

	var messages []wireMessage
	path := fmt.Sprintf("/channels/%d/messages?%s", channelID, query.Encode())
	if err := c.get(ctx, token, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
