package validation

import (
	"strings"
	"testing"
)

type trackPayload struct {
	Title    string `json:"title" validate:"required,max=200"`
	Genre    string `json:"genre" validate:"required,genre"`
	AudioURL string `json:"audio_url" validate:"required,http_url"`
}

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Theme    string `json:"theme" validate:"omitempty,oneof=light dark"`
}

func TestValidateStructPasses(t *testing.T) {
	p := trackPayload{Title: "Rain", Genre: "lofi", AudioURL: "https://utfs.io/f/abc"}
	if err := ValidateStruct(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	err := ValidateStruct(trackPayload{Genre: "polka", AudioURL: "ftp://x"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := map[string]string{}
	for _, f := range err.Fields {
		fields[f.Field] = f.Tag
	}
	if fields["title"] != "required" || fields["genre"] != "genre" || fields["audio_url"] != "http_url" {
		t.Fatalf("unexpected fields: %+v", err.Fields)
	}
	if !strings.Contains(err.Error(), "genre must be one of: Ambient") {
		t.Fatalf("message %q", err.Error())
	}
}

func TestValidateStructMessages(t *testing.T) {
	err := ValidateStruct(signupPayload{Email: "nope", Password: "short", Theme: "neon"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"email must be a valid email address",
		"password must be at least 8 characters",
		"theme must be one of: light dark",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}
