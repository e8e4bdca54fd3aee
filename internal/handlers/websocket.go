package handlers

import (
	"chatarchive-backend/internal/hub"
	"net/http"
)

func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	hub.HandleClient(requestUserID(r), w, r)
}
