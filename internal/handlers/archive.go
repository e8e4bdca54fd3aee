package handlers

import (
	"chatarchive-backend/internal/archive"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxArchiveUploadBytes = 256 << 20

func LoadArchive(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	isJson := contentType == "application/json" || strings.HasSuffix(strings.ToLower(header.Filename), ".json")
	if !isJson {
		http.Error(w, "Only JSON archives are supported", http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxArchiveUploadBytes))
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	summary, err := store.Load(data)
	if err != nil {
		var formatErr *archive.InvalidFormatError
		if errors.As(err, &formatErr) {
			sugar.Debug(formatErr)
			http.Error(w, formatErr.Reason, http.StatusBadRequest)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	err = json.NewEncoder(w).Encode(summary)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

// LoadSampleArchive registers the built-in demo archive through the same
// pipeline a user upload takes.
func LoadSampleArchive(w http.ResponseWriter, r *http.Request) {
	doc, err := archive.Sample(writer)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	data, err := writer.Serialize(doc)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	summary, err := store.Load(data)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(summary)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func SearchArchive(w http.ResponseWriter, r *http.Request) {
	archiveID := chi.URLParam(r, "archiveID")

	messages, err := store.Search(archiveID, r.URL.Query().Get("query"))
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "", http.StatusNotFound)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	err = json.NewEncoder(w).Encode(messages)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

// GetArchiveMessages serves the viewer's per-channel pages, newest first.
func GetArchiveMessages(w http.ResponseWriter, r *http.Request) {
	archiveID := chi.URLParam(r, "archiveID")

	query := r.URL.Query()
	channelID, _ := strconv.ParseUint(query.Get("channelID"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	before, _ := strconv.ParseUint(query.Get("before"), 10, 64)

	messages, err := store.Messages(archiveID, channelID, limit, before)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "", http.StatusNotFound)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	err = json.NewEncoder(w).Encode(messages)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func GetArchiveStats(w http.ResponseWriter, r *http.Request) {
	archiveID := chi.URLParam(r, "archiveID")

	stats, err := store.Stats(archiveID)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "", http.StatusNotFound)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	// an archive without messages has no stats
	if stats == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	err = json.NewEncoder(w).Encode(stats)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func GetArchiveList(w http.ResponseWriter, r *http.Request) {
	err := json.NewEncoder(w).Encode(store.List())
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func RemoveArchive(w http.ResponseWriter, r *http.Request) {
	archiveID := chi.URLParam(r, "archiveID")

	err := store.Remove(archiveID)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "", http.StatusNotFound)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func ClearArchives(w http.ResponseWriter, r *http.Request) {
	store.Clear()
	w.WriteHeader(http.StatusOK)
}
