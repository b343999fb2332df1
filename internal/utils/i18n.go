package utils

// Server-side messages only. Questionnaire and player copy is rendered by the client.
var translations = map[string]map[string]string{
	"en": {
		"health.ok":                 "ok",
		"mood.prompt.new_session":   "How have you been feeling over the past week?",
		"mood.prompt.expired":       "It has been a while. Take a moment to check in again.",
		"mood.prompt.none":          "Your recent check-in is still current.",
		"severity.Normal":           "Normal",
		"severity.Mild":             "Mild",
		"severity.Moderate":         "Moderate",
		"severity.Severe":           "Severe",
		"severity.Extremely Severe": "Extremely Severe",
	},
	"zh": {
		"health.ok":                 "好的",
		"mood.prompt.new_session":   "过去一周你感觉如何？",
		"mood.prompt.expired":       "距离上次测评已有一段时间，请再做一次吧。",
		"mood.prompt.none":          "你最近的测评结果仍然有效。",
		"severity.Normal":           "正常",
		"severity.Mild":             "轻度",
		"severity.Moderate":         "中度",
		"severity.Severe":           "重度",
		"severity.Extremely Severe": "极重度",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}
