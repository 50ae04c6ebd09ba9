package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/scrimhub/tournament-platform/handlers"
	"github.com/scrimhub/tournament-platform/middleware"
)

type Handlers struct {
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Group        *handlers.GroupHandler
	Match        *handlers.MatchHandler
	Leaderboard  *handlers.LeaderboardHandler
	WebSocket    *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Get("/leaderboard", h.Leaderboard.ListStandings)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListTournaments)
		r.Get("/{tournamentID}", h.Tournament.GetTournament)
		r.Get("/{tournamentID}/registrations", h.Registration.ListByTournament)
		r.Post("/{tournamentID}/registrations", h.Registration.Register)
		r.Get("/{tournamentID}/rounds/{roundNumber}/groups", h.Group.ListRoundGroups)
		r.Get("/{tournamentID}/rounds/{roundNumber}/results", h.Group.GetRoundResults)

		r.Get("/{tournamentID}/live", h.WebSocket.SubscribeTournament)

		// Host-only tournament management.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("host"))

			r.Post("/", h.Tournament.CreateTournament)
			r.Patch("/{tournamentID}", h.Tournament.UpdateTournament)
			r.Patch("/{tournamentID}/status", h.Tournament.UpdateTournamentStatus)
			r.Delete("/{tournamentID}", h.Tournament.DeleteTournament)
			r.Post("/{tournamentID}/banner", h.Tournament.UploadBanner)

			r.Post("/{tournamentID}/rounds", h.Group.ConfigureRound)
			r.Post("/{tournamentID}/rounds/{roundNumber}/advance", h.Group.RecordRoundQualifiers)
			r.Post("/{tournamentID}/rounds/{roundNumber}/refresh-statuses", h.Group.RefreshGroupStatuses)
			r.Get("/{tournamentID}/rounds/{roundNumber}/missing-scores", h.Match.ListMissingScores)
			r.Post("/{tournamentID}/winner", h.Group.ComputeWinner)
		})
	})

	router.Route("/groups", func(r chi.Router) {
		r.Get("/{groupID}", h.Group.GetGroup)
		r.Get("/{groupID}/standings", h.Group.GetGroupStandings)
		r.Get("/{groupID}/matches", h.Match.ListGroupMatches)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("host"))

			r.Get("/{groupID}/qualifiers", h.Group.GetGroupQualifiers)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("host"))

			r.Post("/{matchID}/start", h.Match.StartMatch)
			r.Post("/{matchID}/scores", h.Match.SubmitScores)
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize("host"))

		r.Post("/{registrationID}/confirm", h.Registration.Confirm)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize("admin"))

		r.Post("/leaderboard/recalculate", h.Leaderboard.Recalculate)
	})

	return router
}
