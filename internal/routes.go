package internal

import (
	"net/http"

	"lifewrapped/internal/controllers"
	"lifewrapped/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/record/start", http.HandlerFunc(apiController.StartRecording))
	routers.Post("/record/stop", http.HandlerFunc(apiController.StopRecording))
	routers.Get("/record/status", http.HandlerFunc(apiController.RecordingStatus))

	routers.Get("/sessions", http.HandlerFunc(apiController.ListSessions))
	routers.Get("/session", http.HandlerFunc(apiController.GetSession))
	routers.Post("/session/delete", http.HandlerFunc(apiController.DeleteSession))
	routers.Post("/session/category", http.HandlerFunc(apiController.SetCategory))
	routers.Post("/session/favorite", http.HandlerFunc(apiController.SetFavorite))

	routers.Post("/chunk/retry", http.HandlerFunc(apiController.RetryChunk))
	routers.Get("/transcript", http.HandlerFunc(apiController.GetTranscript))

	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Post("/summary/regenerate", http.HandlerFunc(apiController.RegenerateSummary))

	routers.Get("/insights/words", http.HandlerFunc(apiController.GetWordCloud))
	routers.Get("/insights/mentions", http.HandlerFunc(apiController.GetMentions))
	routers.Get("/insights/sentiment", http.HandlerFunc(apiController.GetSentiment))

	routers.Get("/export", http.HandlerFunc(apiController.Export))
	routers.Post("/import", http.HandlerFunc(apiController.Import))

	routers.Post("/secrets/set", http.HandlerFunc(apiController.SetSecret))
	routers.Post("/secrets/delete", http.HandlerFunc(apiController.DeleteSecret))
	routers.Post("/data/delete-all", http.HandlerFunc(apiController.DeleteAllData))

	return routers
}
