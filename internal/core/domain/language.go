package domain

// Language is an ISO 639-1 code as reported by the language detector.
type Language string

const (
	LangVietnamese Language = "vi"
	LangEnglish    Language = "en"

	// LangUnknown is the fail-open sentinel: the detector could not decide.
	LangUnknown Language = "unknown"
)

// WorkingLanguage is the pivot language queries are normalized into before
// rewrite, classification and retrieval.
const WorkingLanguage = LangVietnamese

// SupportedLanguage reports whether the pipeline can serve a query detected
// in the given language. Unknown codes are not supported.
func SupportedLanguage(lang Language) bool {
	switch lang {
	case LangVietnamese, LangEnglish:
		return true
	default:
		return false
	}
}
