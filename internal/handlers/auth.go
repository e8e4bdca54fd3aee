package handlers

import (
	"chatarchive-backend/internal/discord"
	"chatarchive-backend/internal/jwt"
	"chatarchive-backend/internal/tokens"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const tokenLifetime = time.Hour * 24 * 7 * 4

func Login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Token      string `json:"token"`
		RememberMe bool   `json:"rememberMe"`
	}

	var login LoginRequest
	err := json.NewDecoder(r.Body).Decode(&login)
	if err != nil || login.Token == "" {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	// the token is validated by asking the remote service who it belongs to
	me, err := discordClient.Me(r.Context(), login.Token)
	if err != nil {
		var retrievalErr *discord.RetrievalError
		if errors.As(err, &retrievalErr) {
			sugar.Debugf("Token validation rejected with status %d", retrievalErr.StatusCode)
			http.Error(w, "", http.StatusUnauthorized)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	err = tokens.Set(me.ID, login.Token, tokenLifetime)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	cookie, err := jwt.CreateToken(login.RememberMe, me.ID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &cookie)

	err = json.NewEncoder(w).Encode(me)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func Logout(w http.ResponseWriter, r *http.Request) {
	jwtCookie, err := r.Cookie("JWT")
	if err == nil {
		if userToken, verifyErr := jwt.VerifyToken(jwtCookie.Value); verifyErr == nil {
			if delErr := tokens.Delete(userToken.UserID); delErr != nil {
				sugar.Error(delErr)
			}
		}
	}

	http.SetCookie(w, jwt.DeleteCookie())
	w.WriteHeader(http.StatusOK)
}

func Me(w http.ResponseWriter, r *http.Request) {
	me, err := discordClient.Me(r.Context(), requestToken(r))
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusUnauthorized)
		return
	}

	err = json.NewEncoder(w).Encode(me)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}
