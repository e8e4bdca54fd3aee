package archive

import (
	"chatarchive-backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for operations referencing an unregistered handle.
var ErrNotFound = errors.New("archive not found")

// InvalidFormatError rejects a byte stream before anything is registered, a
// partially valid archive is never stored.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid archive format: %s", e.Reason)
}

// Summary is what the presentation layer gets back after a load.
type Summary struct {
	ID           string                 `json:"id"`
	GuildName    string                 `json:"guildName"`
	ChannelName  string                 `json:"channelName"`
	ExportName   string                 `json:"exportName"`
	MessageCount int                    `json:"messageCount"`
	Metadata     models.ArchiveMetadata `json:"metadata"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Stats struct {
	TotalMessages     int       `json:"totalMessages"`
	TotalChannels     int       `json:"totalChannels"`
	DateRange         DateRange `json:"dateRange"`
	UniqueAuthorCount int       `json:"uniqueAuthorCount"`
}

// Store owns every loaded archive. Documents are immutable after
// registration, which is what lets search and stats run without copies of
// anything but the result slice.
type Store struct {
	mutex     sync.RWMutex
	archives  map[string]*models.ArchiveDocument
	summaries map[string]Summary
	order     []string

	validate *validator.Validate
	sugar    *zap.SugaredLogger
}

func NewStore(sugar *zap.SugaredLogger) *Store {
	return &Store{
		archives:  make(map[string]*models.ArchiveDocument),
		summaries: make(map[string]Summary),
		validate:  validator.New(),
		sugar:     sugar,
	}
}

// Load parses and validates a byte stream, registers it under a fresh handle
// and returns the summary. On any validation failure the registry is left
// untouched.
func (s *Store) Load(data []byte) (*Summary, error) {
	var doc models.ArchiveDocument

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &InvalidFormatError{Reason: "not a valid archive document"}
	}

	if doc.Messages == nil {
		return nil, &InvalidFormatError{Reason: "missing messages array"}
	}

	if err := s.validate.Struct(doc.Metadata); err != nil {
		return nil, &InvalidFormatError{Reason: "metadata is missing exportDate or format"}
	}

	guildName := "Unknown Server"
	if doc.Guild != nil && doc.Guild.Name != "" {
		guildName = doc.Guild.Name
	}

	channelName := "Unknown Channel"
	if len(doc.Channels) > 0 && doc.Channels[0].Name != "" {
		channelName = doc.Channels[0].Name
	}

	summary := Summary{
		ID:           uuid.NewString(),
		GuildName:    guildName,
		ChannelName:  channelName,
		ExportName:   fmt.Sprintf("%s - %s", guildName, channelName),
		MessageCount: len(doc.Messages),
		Metadata:     doc.Metadata,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.archives[summary.ID] = &doc
	s.summaries[summary.ID] = summary
	s.order = append(s.order, summary.ID)

	s.sugar.Debugf("Loaded archive [%s] with %d messages", summary.ID, summary.MessageCount)

	return &summary, nil
}

// Search matches the query case-insensitively against message content,
// author display name and attachment file names. An empty query returns all
// messages of the archive in storage order.
func (s *Store) Search(id string, query string) ([]models.Message, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, exists := s.archives[id]
	if !exists {
		return nil, ErrNotFound
	}

	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		results := make([]models.Message, len(doc.Messages))
		copy(results, doc.Messages)
		return results, nil
	}

	var results []models.Message = []models.Message{}

	for _, message := range doc.Messages {
		if messageMatches(message, term) {
			results = append(results, message)
		}
	}

	return results, nil
}

func messageMatches(message models.Message, term string) bool {
	if strings.Contains(strings.ToLower(message.Content), term) {
		return true
	}
	if strings.Contains(strings.ToLower(message.Author.Name), term) {
		return true
	}
	for _, attachment := range message.Attachments {
		if strings.Contains(strings.ToLower(attachment.FileName), term) {
			return true
		}
	}
	return false
}

// Messages returns one page of a loaded archive, newest first. channelID == 0
// means all channels. before is an exclusive message id cursor; an id that is
// not in the page order is ignored and paging starts from the newest message.
// limit <= 0 falls back to 50.
func (s *Store) Messages(id string, channelID uint64, limit int, before uint64) ([]models.Message, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, exists := s.archives[id]
	if !exists {
		return nil, ErrNotFound
	}

	messages := make([]models.Message, 0, len(doc.Messages))
	for _, message := range doc.Messages {
		if channelID == 0 || message.ChannelID == channelID {
			messages = append(messages, message)
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})

	if before != 0 {
		for i, message := range messages {
			if message.ID == before {
				messages = messages[i+1:]
				break
			}
		}
	}

	if limit <= 0 {
		limit = 50
	}
	if len(messages) > limit {
		messages = messages[:limit]
	}

	return messages, nil
}

// Stats computes aggregates on demand; archives are immutable once loaded so
// there is nothing to cache or invalidate. An archive with zero messages has
// no stats and returns nil.
func (s *Store) Stats(id string) (*Stats, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, exists := s.archives[id]
	if !exists {
		return nil, ErrNotFound
	}

	if len(doc.Messages) == 0 {
		return nil, nil
	}

	stats := Stats{
		TotalMessages: len(doc.Messages),
		TotalChannels: len(doc.Channels),
		DateRange: DateRange{
			Start: doc.Messages[0].Timestamp,
			End:   doc.Messages[0].Timestamp,
		},
	}

	authors := make(map[uint64]struct{})

	for _, message := range doc.Messages {
		if message.Timestamp.Before(stats.DateRange.Start) {
			stats.DateRange.Start = message.Timestamp
		}
		if message.Timestamp.After(stats.DateRange.End) {
			stats.DateRange.End = message.Timestamp
		}
		authors[message.Author.ID] = struct{}{}
	}

	stats.UniqueAuthorCount = len(authors)

	return &stats, nil
}

func (s *Store) Remove(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.archives[id]; !exists {
		return ErrNotFound
	}

	delete(s.archives, id)
	delete(s.summaries, id)
	for i, handle := range s.order {
		if handle == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.sugar.Debugf("Removed archive [%s]", id)

	return nil
}

func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.archives = make(map[string]*models.ArchiveDocument)
	s.summaries = make(map[string]Summary)
	s.order = nil

	s.sugar.Debug("Cleared all loaded archives")
}

// List returns summaries in insertion order.
func (s *Store) List() []Summary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summaries := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.summaries[id])
	}
	return summaries
}
