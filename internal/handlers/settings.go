package handlers

import (
	"encoding/json"
	"net/http"
)

func GetSettings(w http.ResponseWriter, r *http.Request) {
	appSettings, err := settingsService.Get()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(appSettings)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

// UpdateSettings decodes the request body over the currently stored settings,
// so partial updates keep everything else untouched.
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	appSettings, err := settingsService.Get()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewDecoder(r.Body).Decode(&appSettings)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = settingsService.Update(appSettings)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(appSettings)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func ResetSettings(w http.ResponseWriter, r *http.Request) {
	err := settingsService.Reset()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
