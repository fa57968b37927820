package api

// form parameter names for the upload request
const (
	// PrmFile - media file form parameter
	PrmFile = "file"
	// PrmTargetLanguage - optional target language code for post-processing
	PrmTargetLanguage = "target_language"
	// PrmLLMModel - optional text-generation model identifier
	PrmLLMModel = "llm_model"
)

// languageCodes keeps the match order stable, e.g. "en" wins over "th"
// when scanning free form model answers
var languageCodes = []string{"zh", "en", "ja", "ko", "fr", "de", "es", "ru", "pt", "it", "ar", "th", "vi"}

// languageNames maps supported language codes to names used in prompts
var languageNames = map[string]string{
	"zh": "Chinese",
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"ru": "Russian",
	"pt": "Portuguese",
	"it": "Italian",
	"ar": "Arabic",
	"th": "Thai",
	"vi": "Vietnamese",
}

// SupportLanguage checks if a language code can be a post-processing target
func SupportLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// LanguageName returns a human readable name for a code, or the code itself
func LanguageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return code
}

// Languages returns all supported language codes
func Languages() []string {
	res := make([]string, len(languageCodes))
	copy(res, languageCodes)
	return res
}
