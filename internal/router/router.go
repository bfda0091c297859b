package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teledrive-web/internal/config"
	"teledrive-web/internal/handler"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/session"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Drive     *handler.DriveHandler
	Folder    *handler.FolderHandler
	Selection *handler.SelectionHandler
	Upload    *handler.UploadHandler
	Tags      *handler.TagsHandler
	Media     *handler.MediaHandler
	WS        *handler.WSHandler
}

func New(cfg *config.Config, sessions *session.Manager, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.WithSession(sessions))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(middleware.Timeout(cfg.RequestTimeout))

			auth.Post("/send_code", h.Auth.SendCode)
			auth.Post("/check_code", h.Auth.CheckCode)
			auth.Post("/check_password", h.Auth.CheckPassword)
			auth.Post("/back", h.Auth.Back)
			auth.Get("/state", h.Auth.State)
			auth.With(middleware.RequireSession).Get("/me", h.Auth.Me)
			auth.With(middleware.RequireSession).Post("/logout", h.Auth.Logout)
		})

		api.Group(func(priv chi.Router) {
			priv.Use(middleware.Timeout(cfg.RequestTimeout))
			priv.Use(middleware.RequireSession)

			priv.Get("/drive", h.Drive.List)
			priv.Post("/drive/refresh", h.Drive.Refresh)

			priv.Post("/folders", h.Folder.Create)
			priv.Put("/folders/rename", h.Folder.Rename)
			priv.Get("/folders/breadcrumbs", h.Folder.Breadcrumbs)
			priv.Put("/files/rename", h.Folder.RenameFile)

			priv.Post("/selection/toggle", h.Selection.Toggle)
			priv.Post("/selection/all", h.Selection.All)
			priv.Post("/selection/clear", h.Selection.Clear)
			priv.Post("/selection/drag", h.Selection.Drag)
			priv.Post("/selection/move", h.Selection.Move)
			priv.Post("/selection/delete", h.Selection.Delete)

			priv.Post("/tags/suggest", h.Tags.Suggest)

			priv.Get("/me/photo", h.Media.Photo)
		})

		// Media transfers stream; the buffering timeout handler would
		// hold whole files in memory.
		api.Group(func(media chi.Router) {
			media.Use(middleware.StreamingTimeout(30*time.Minute, 2*time.Minute))
			media.Use(middleware.RequireSession)

			media.Post("/files/upload", h.Upload.Upload)
			media.Get("/files/download/{messageID}", h.Media.Download)
			media.Get("/files/thumbnail/{messageID}", h.Media.Thumbnail)
		})

		api.With(middleware.RequireSession).Get("/ws", h.WS.Serve)
	})

	return r
}
