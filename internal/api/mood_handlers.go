package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/middleware"
	"github.com/soaringjerry/Sanctuary/internal/services"
	"github.com/soaringjerry/Sanctuary/internal/utils"
)

// submissionView adds locale-specific label text to a stored submission.
type submissionView struct {
	services.Submission
	LabelText map[dass.Subscale]string `json:"label_text"`
}

func localize(locale string, s services.Submission) submissionView {
	text := make(map[dass.Subscale]string, len(s.Result.Labels)+1)
	for sub, sev := range s.Result.Labels {
		text[sub] = utils.T(locale, "severity."+string(sev))
	}
	text[dass.Overall] = utils.T(locale, "severity."+string(s.Result.OverallLabel))
	return submissionView{Submission: s, LabelText: text}
}

// GET /api/mood/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Mood.Questionnaire())
}

// POST /api/mood/assessments
// { answers: {"1": 0..3, ..., "21": 0..3} }
func (rt *Router) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := rt.svc.Mood.Submit(r.Context(), currentUser(r), req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("overall_label", string(sub.Result.OverallLabel)).Msg("assessment submitted")
	writeJSON(w, http.StatusCreated, localize(middleware.LocaleFromContext(r.Context()), *sub))
}

// GET /api/mood/latest
func (rt *Router) handleLatest(w http.ResponseWriter, r *http.Request) {
	sub, err := rt.svc.Mood.Latest(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sub == nil {
		writeJSON(w, http.StatusOK, map[string]any{"latest": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"latest": localize(middleware.LocaleFromContext(r.Context()), *sub)})
}

// GET /api/mood/status
func (rt *Router) handleStatus(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.ClaimsFromContext(r.Context())
	st, err := rt.svc.Mood.Status(r.Context(), c.UID, c.SID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	key := "mood.prompt.none"
	if st.Prompt {
		key = "mood.prompt." + st.Reason
	}
	body := map[string]any{
		"prompt":  st.Prompt,
		"reason":  st.Reason,
		"message": utils.T(locale, key),
		"latest":  nil,
	}
	if st.Latest != nil {
		body["latest"] = localize(locale, *st.Latest)
	}
	writeJSON(w, http.StatusOK, body)
}

// GET /api/mood/history
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	list, err := rt.svc.Mood.History(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	out := make([]submissionView, 0, len(list))
	for _, s := range list {
		out = append(out, localize(locale, s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": out})
}

// GET /api/mood/history/export
func (rt *Router) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	b, err := rt.svc.History.ExportCSV(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	name := fmt.Sprintf("mood-history-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	_, _ = w.Write(b)
}

// DELETE /api/mood/history
func (rt *Router) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	n, err := rt.svc.History.DeleteHistory(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}
