package routes

import (
	"github.com/go-chi/chi/v5"

	"versions/relay/internal/api"
	"versions/relay/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, limiter *middleware.IPRateLimiter) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)

		v1.Route("/audio", func(audio chi.Router) {
			audio.Get("/files", handlers.ListAudioFiles())
			audio.Get("/{file_id}/metadata", handlers.AudioMetadata())
			audio.Get("/{file_id}/stream", handlers.AudioStream())
		})

		v1.Route("/farcaster", func(fc chi.Router) {
			fc.Get("/profile/{fid}", handlers.GetProfile())
			fc.Post("/profiles", handlers.GetProfiles())
			fc.Post("/cast", handlers.Cast())
			fc.Post("/cast/discovery", handlers.CastDiscovery())
			fc.Get("/recommendations", handlers.GetRecommendations())
			fc.Get("/status", handlers.SocialStatus())
			fc.Post("/signout", handlers.SignOut())
		})
		v1.Get("/versions/{id}/discussions", handlers.GetDiscussions())

		v1.Route("/filecoin", func(fil chi.Router) {
			fil.Get("/storage/{file_id}", handlers.GetStorageInfo())
			fil.Get("/network/status", handlers.GetNetworkStatus())
			fil.Get("/stream/{cid}", handlers.StreamPiece())
			fil.Get("/creator/earnings", handlers.GetCreatorEarnings())
			fil.Get("/creator/analytics", handlers.GetCreatorAnalytics())
			fil.Post("/creator/withdraw", handlers.WithdrawEarnings())
			fil.Post("/payment/creator", handlers.PayCreator())
			fil.Post("/upload", handlers.UploadVersion())
		})

		v1.Route("/wallet", func(wallet chi.Router) {
			wallet.Get("/", handlers.GetWallet())
			wallet.Post("/connect", handlers.ConnectWallet())
			wallet.Post("/disconnect", handlers.DisconnectWallet())
		})

		v1.Get("/cache/stats", handlers.CacheStats())
		v1.Post("/cache/clear", handlers.ClearCaches())
		v1.Get("/activity", handlers.ListActivity())
	})
}
