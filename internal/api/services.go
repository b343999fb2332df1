package api

import (
	"github.com/soaringjerry/Sanctuary/internal/config"
	"github.com/soaringjerry/Sanctuary/internal/middleware"
	"github.com/soaringjerry/Sanctuary/internal/recommend"
	"github.com/soaringjerry/Sanctuary/internal/services"
	"github.com/soaringjerry/Sanctuary/internal/storage"
)

// Services bundles the domain services over one Store.
type Services struct {
	Store           Store
	Auth            *services.AuthService
	Tracks          *services.TrackService
	Mood            *services.MoodService
	Recommendations *services.RecommendationService
	Preferences     *services.PreferenceService
	Player          *services.PlayerService
	Stats           *services.StatsService
	History         *services.HistoryService
}

// Deps are the collaborators NewServices wires together. Nil Files and OTP
// fall back to storage.Noop and log delivery.
type Deps struct {
	Store    Store
	Files    storage.Deleter
	OTP      services.OTPSender
	Shuffler recommend.Shuffler
}

func NewServices(cfg *config.Config, deps Deps) (*Services, error) {
	strategy, err := recommend.ParseStrategy(cfg.Mood.Strategy)
	if err != nil {
		return nil, err
	}
	files := deps.Files
	if files == nil {
		files = storage.Noop{}
	}
	otp := deps.OTP
	if otp == nil {
		otp = services.LogOTPSender{}
	}

	auth := services.NewAuthService(deps.Store, middleware.SignToken, otp)
	auth.SetTTLs(cfg.Auth.TokenTTL, cfg.Auth.OTPTTL)
	mood := services.NewMoodService(deps.Store, services.MoodOptions{
		RepromptAfter:   cfg.Mood.RepromptAfter,
		RequireComplete: cfg.Mood.RequireComplete,
	})
	prefs := services.NewPreferenceService(deps.Store)
	return &Services{
		Store:           deps.Store,
		Auth:            auth,
		Tracks:          services.NewTrackService(deps.Store, files),
		Mood:            mood,
		Recommendations: services.NewRecommendationService(mood, deps.Store, strategy, cfg.Mood.PlaylistSize, deps.Shuffler),
		Preferences:     prefs,
		Player:          services.NewPlayerService(deps.Store, prefs),
		Stats:           services.NewStatsService(deps.Store),
		History:         services.NewHistoryService(deps.Store),
	}, nil
}
