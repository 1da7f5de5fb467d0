package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/matches/completed", handler.ListCompletedMatches)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	internal := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}

	mux.Handle("POST /v1/internal/jobs/fetch-results", internal(handler.RunFetchResultsJob))
	mux.Handle("POST /v1/internal/jobs/fetch-teams", internal(handler.RunFetchTeamsJob))
	mux.Handle("POST /v1/internal/jobs/fetch-goal-stats", internal(handler.RunFetchGoalStatsJob))
	mux.Handle("POST /v1/internal/jobs/bootstrap", internal(handler.RunBootstrapJob))
	mux.Handle("DELETE /v1/internal/matches/{matchID}", internal(handler.DeleteMatch))
}
