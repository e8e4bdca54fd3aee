package handlers

import (
	"chatarchive-backend/internal/archive"
	"chatarchive-backend/internal/config"
	"chatarchive-backend/internal/discord"
	"chatarchive-backend/internal/settings"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger
var db *sql.DB
var cfg *config.Config

var discordClient *discord.Client
var retriever *discord.Retriever
var writer *archive.Writer
var store *archive.Store
var settingsService *settings.Service

type Services struct {
	DiscordClient *discord.Client
	Retriever     *discord.Retriever
	Writer        *archive.Writer
	Store         *archive.Store
	Settings      *settings.Service
}

func Setup(isHttps bool, _cfg *config.Config, _sugar *zap.SugaredLogger, _db *sql.DB, services Services) error {
	sugar = _sugar
	db = _db
	cfg = _cfg

	discordClient = services.DiscordClient
	retriever = services.Retriever
	writer = services.Writer
	store = services.Store
	settingsService = services.Settings

	r := chi.NewRouter()
	if cfg.Server.Cors {
		r.Use(AllowCors)
	}
	if cfg.Server.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)

	// exports of long channels can take a while between rate-limit delays
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/login", Login)
			r.Post("/logout", Logout)
			r.With(UserVerifier).Get("/me", Me)
			r.With(UserVerifier).Get("/isLoggedIn", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		})

		api.Route("/guild", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Get("/fetch", GetGuildList)
			r.Get("/channels", GetGuildChannelList)
		})

		api.Route("/dm", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Get("/fetch", GetDMChannelList)
		})

		api.Route("/export", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/channel", ExportChannel)
			r.Post("/dm", ExportDM)
			r.Post("/guild", ExportGuild)
			r.Get("/history", GetExportHistory)
		})

		api.Route("/archive", func(r chi.Router) {
			r.Post("/load", LoadArchive)
			r.Get("/list", GetArchiveList)
			r.Get("/sample", LoadSampleArchive)
			r.Post("/clear", ClearArchives)
			r.Get("/{archiveID}/search", SearchArchive)
			r.Get("/{archiveID}/messages", GetArchiveMessages)
			r.Get("/{archiveID}/stats", GetArchiveStats)
			r.Post("/{archiveID}/remove", RemoveArchive)
		})

		api.Route("/settings", func(r chi.Router) {
			r.Get("/fetch", GetSettings)
			r.Post("/update", UpdateSettings)
			r.Post("/reset", ResetSettings)
		})
	})

	var websocketPath string

	if cfg.Server.BehindNginx {
		websocketPath = "/ws/"
	} else {
		websocketPath = "/ws"
		r.Handle("/*", http.FileServer(http.Dir("./public/static")))
	}

	r.With(UserVerifier).Get(websocketPath, HandleWebSocket)

	address := fmt.Sprintf("%s:%s", cfg.Server.Address, cfg.Server.Port)

	if isHttps {
		return http.ListenAndServeTLS(address, cfg.Server.TlsCert, cfg.Server.TlsKey, r)
	}
	return http.ListenAndServe(address, r)
}
