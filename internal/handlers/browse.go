package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func GetGuildList(w http.ResponseWriter, r *http.Request) {
	guilds, err := discordClient.Guilds(r.Context(), requestToken(r))
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusBadGateway)
		return
	}

	err = json.NewEncoder(w).Encode(guilds)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func GetGuildChannelList(w http.ResponseWriter, r *http.Request) {
	guildID, err := strconv.ParseUint(r.URL.Query().Get("guildID"), 10, 64)
	if err != nil || guildID == 0 {
		http.Error(w, "Invalid guild ID", http.StatusBadRequest)
		return
	}

	channels, err := discordClient.GuildChannels(r.Context(), requestToken(r), guildID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusBadGateway)
		return
	}

	err = json.NewEncoder(w).Encode(channels)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func GetDMChannelList(w http.ResponseWriter, r *http.Request) {
	channels, err := discordClient.DMChannels(r.Context(), requestToken(r))
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusBadGateway)
		return
	}

	err = json.NewEncoder(w).Encode(channels)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}
