package llm

import (
	"regexp"
	"strings"
)

var (
	thinkRegexp      = regexp.MustCompile(`(?s)<think>.*?</think>`)
	headerRegexp     = regexp.MustCompile(`(?m)^#{1,6}\s+.*$`)
	boldRegexp       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRegexp     = regexp.MustCompile(`\*([^*]+)\*`)
	hrRegexp         = regexp.MustCompile(`(?m)^-{3,}$`)
	bulletRegexp     = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	hashtagRegexp    = regexp.MustCompile(`#\S+`)
	emojiRegexp      = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}\x{2600}-\x{27BF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]`)
	prefixRegexp     = regexp.MustCompile(`^(处理后|翻译|Formatted text|Translation|Result)[：:]\s*`)
	emptyLinesRegexp = regexp.MustCompile(`\n{3,}`)
)

// CleanOutput strips model chatter from generated text: thinking
// blocks, markdown decoration, emojis and leading boilerplate
func CleanOutput(text string) string {
	if text == "" {
		return ""
	}
	text = thinkRegexp.ReplaceAllString(text, "")
	text = headerRegexp.ReplaceAllString(text, "")
	text = boldRegexp.ReplaceAllString(text, "$1")
	text = italicRegexp.ReplaceAllString(text, "$1")
	text = hrRegexp.ReplaceAllString(text, "")
	text = bulletRegexp.ReplaceAllString(text, "")
	text = hashtagRegexp.ReplaceAllString(text, "")
	text = emojiRegexp.ReplaceAllString(text, "")
	text = prefixRegexp.ReplaceAllString(text, "")
	text = emptyLinesRegexp.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
