package api

import "github.com/soaringjerry/Sanctuary/internal/dass"

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"max=80"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// assessmentRequest carries answers keyed by question id (1..21). Missing
// questions count as 0 unless mood.require_complete is set.
type assessmentRequest struct {
	Answers dass.Answers `json:"answers"`
}

type trackRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Artist   string `json:"artist" validate:"required,max=200"`
	Genre    string `json:"genre" validate:"required,genre"`
	AudioURL string `json:"audio_url" validate:"required,http_url"`
}

type preferencesRequest struct {
	Theme          string `json:"theme" validate:"omitempty,oneof=light dark nature ocean nature-dark ocean-dark"`
	ContentDensity string `json:"content_density" validate:"omitempty,oneof=compact comfortable"`
}
