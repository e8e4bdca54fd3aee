package handlers

import (
	"chatarchive-backend/internal/discord"
	"chatarchive-backend/internal/hub"
	"chatarchive-backend/internal/models"
	"chatarchive-backend/internal/snowflake"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type exportRequest struct {
	ChannelID      uint64 `json:"channelID,string"`
	GuildID        uint64 `json:"guildID,string,omitempty"`
	Limit          int    `json:"limit"`
	Format         string `json:"format"`
	Media          bool   `json:"media"`
	ReuseMedia     bool   `json:"reuseMedia"`
	Markdown       bool   `json:"markdown"`
	IncludeThreads string `json:"includeThreads"`
}

func decodeExportRequest(w http.ResponseWriter, r *http.Request) (exportRequest, bool) {
	var request exportRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return request, false
	}

	if request.Limit <= 0 {
		appSettings, err := settingsService.Get()
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return request, false
		}
		request.Limit = appSettings.Export.DefaultMessageLimit
	}

	return request, true
}

func (request exportRequest) options() models.ExportOptions {
	return models.ExportOptions{
		Format:         request.Format,
		Limit:          request.Limit,
		Media:          request.Media,
		ReuseMedia:     request.ReuseMedia,
		Markdown:       request.Markdown,
		IncludeThreads: request.IncludeThreads,
	}
}

func fetchWithProgress(r *http.Request, channelID uint64, limit int) ([]models.Message, error) {
	hub.Broadcast(hub.ExportStarted, map[string]any{"channelID": fmt.Sprint(channelID), "limit": limit})

	messages, err := retriever.FetchMessages(r.Context(), requestToken(r), channelID, limit, 0, func(fetched int) {
		hub.Broadcast(hub.ExportProgress, map[string]any{"channelID": fmt.Sprint(channelID), "fetched": fetched})
	})
	if err != nil {
		hub.Broadcast(hub.ExportFailed, map[string]any{"channelID": fmt.Sprint(channelID)})
		return nil, err
	}

	hub.Broadcast(hub.ExportCompleted, map[string]any{"channelID": fmt.Sprint(channelID), "fetched": len(messages)})
	return messages, nil
}

func writeRetrievalError(w http.ResponseWriter, err error) {
	var retrievalErr *discord.RetrievalError
	if errors.As(err, &retrievalErr) {
		sugar.Debugf("Export aborted, remote service answered with status %d", retrievalErr.StatusCode)
		http.Error(w, "", http.StatusBadGateway)
		return
	}

	sugar.Error(err)
	http.Error(w, "", http.StatusInternalServerError)
}

func respondArchive(w http.ResponseWriter, doc *models.ArchiveDocument, channelID uint64, guildID uint64) {
	data, err := writer.Serialize(doc)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	fileName := writer.FileName(channelID)

	err = recordExportHistory(channelID, guildID, fileName, len(doc.Messages))
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	_, err = w.Write(data)
	if err != nil {
		sugar.Error(err)
	}
}

func ExportChannel(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}
	if request.ChannelID == 0 {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	messages, err := fetchWithProgress(r, request.ChannelID, request.Limit)
	if err != nil {
		writeRetrievalError(w, err)
		return
	}

	channel := models.Channel{ID: request.ChannelID, Name: "exported-channel"}

	var guild *models.Guild
	if request.GuildID != 0 {
		guild = &models.Guild{ID: request.GuildID, Name: "Exported Guild"}
	}

	doc, err := writer.Build(messages, &channel, guild, request.options())
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	respondArchive(w, doc, request.ChannelID, request.GuildID)
}

func ExportDM(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}
	if request.ChannelID == 0 {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	messages, err := fetchWithProgress(r, request.ChannelID, request.Limit)
	if err != nil {
		writeRetrievalError(w, err)
		return
	}

	channel := models.Channel{ID: request.ChannelID, Type: 1, Name: "Direct Message"}

	doc, err := writer.Build(messages, &channel, nil, request.options())
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	respondArchive(w, doc, request.ChannelID, 0)
}

func ExportGuild(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}
	if request.GuildID == 0 {
		http.Error(w, "Invalid guild ID", http.StatusBadRequest)
		return
	}

	channels, err := discordClient.GuildChannels(r.Context(), requestToken(r), request.GuildID)
	if err != nil {
		writeRetrievalError(w, err)
		return
	}

	var allMessages []models.Message = []models.Message{}

	// channels the account can't read are skipped, not fatal
	for _, channel := range channels {
		messages, err := fetchWithProgress(r, channel.ID, request.Limit)
		if err != nil {
			sugar.Debugf("Skipping channel [%d]: %v", channel.ID, err)
			continue
		}
		allMessages = append(allMessages, messages...)
	}

	guild := models.Guild{ID: request.GuildID, Name: "Exported Guild"}

	doc, err := writer.Build(allMessages, nil, &guild, request.options())
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	doc.Channels = channels

	respondArchive(w, doc, request.GuildID, request.GuildID)
}

func recordExportHistory(channelID uint64, guildID uint64, fileName string, messageCount int) error {
	id, err := snowflake.Generate()
	if err != nil {
		return err
	}

	_, err = db.Exec("INSERT INTO export_history (id, channel_id, guild_id, file_name, message_count) VALUES(?, ?, ?, ?, ?)",
		id, channelID, guildID, fileName, messageCount)
	return err
}

func GetExportHistory(w http.ResponseWriter, r *http.Request) {
	type HistoryEntry struct {
		ID           uint64    `json:"id,string"`
		ChannelID    uint64    `json:"channelID,string"`
		GuildID      uint64    `json:"guildID,string"`
		FileName     string    `json:"fileName"`
		MessageCount int       `json:"messageCount"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	rows, err := db.Query("SELECT id, channel_id, guild_id, file_name, message_count, created_at FROM export_history ORDER BY id DESC")
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var entries []HistoryEntry = []HistoryEntry{}

	for rows.Next() {
		var entry HistoryEntry
		err := rows.Scan(&entry.ID, &entry.ChannelID, &entry.GuildID, &entry.FileName, &entry.MessageCount, &entry.CreatedAt)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(entries)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}
