package handlers

import (
	"chatarchive-backend/internal/jwt"
	"chatarchive-backend/internal/tokens"
	"context"
	"errors"
	"net/http"
)

type UserIDKeyType struct{}
type TokenKeyType struct{}

func AllowCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserVerifier restores the logged-in user from the JWT cookie and attaches
// the user's remote-service token to the request context. A missing cached
// token means the login expired on our side, whatever the JWT says.
func UserVerifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtCookie, err := r.Cookie("JWT")
		if err != nil {
			sugar.Debug(err)
			switch {
			case errors.Is(err, http.ErrNoCookie):
				http.Error(w, "No jwt cookie was provided", http.StatusUnauthorized)
			default:
				http.Error(w, "Couldn't read jwt cookie", http.StatusInternalServerError)
			}
			return
		}

		// expired tokens are already rejected by the claims validation
		userToken, err := jwt.VerifyToken(jwtCookie.Value)
		if err != nil {
			sugar.Debug(err)
			http.Error(w, "Couldn't verify JWT", http.StatusBadRequest)
			return
		}

		discordToken, err := tokens.Get(userToken.UserID)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		if discordToken == "" {
			http.SetCookie(w, jwt.DeleteCookie())
			http.Error(w, "", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKeyType{}, userToken.UserID)
		ctx = context.WithValue(ctx, TokenKeyType{}, discordToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUserID(r *http.Request) uint64 {
	userID, _ := r.Context().Value(UserIDKeyType{}).(uint64)
	return userID
}

func requestToken(r *http.Request) string {
	token, _ := r.Context().Value(TokenKeyType{}).(string)
	return token
}
