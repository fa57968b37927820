package transcriber

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type segment struct {
	start, end time.Duration
	text       string
}

// pause thresholds for paragraphing the transcript
const (
	shortPause  = 500 * time.Millisecond  // below - same line
	mediumPause = 1500 * time.Millisecond // below - line break, above - paragraph
)

var segmentRegexp = regexp.MustCompile(
	`^\[(\d{2}):(\d{2}):(\d{2})[.,](\d{3}) --> (\d{2}):(\d{2}):(\d{2})[.,](\d{3})\]\s*(.*)$`)

func parseSegment(line string) (segment, bool) {
	m := segmentRegexp.FindStringSubmatch(line)
	if m == nil {
		return segment{}, false
	}
	return segment{start: toDuration(m[1], m[2], m[3], m[4]),
		end: toDuration(m[5], m[6], m[7], m[8]), text: strings.TrimSpace(m[9])}, true
}

func toDuration(h, m, s, ms string) time.Duration {
	hi, _ := strconv.Atoi(h)
	mi, _ := strconv.Atoi(m)
	si, _ := strconv.Atoi(s)
	msi, _ := strconv.Atoi(ms)
	return time.Duration(hi)*time.Hour + time.Duration(mi)*time.Minute +
		time.Duration(si)*time.Second + time.Duration(msi)*time.Millisecond
}

// formatSegments joins segments into readable text: a pause longer than
// mediumPause starts a new paragraph, longer than shortPause a new line
func formatSegments(segments []segment) string {
	var sb strings.Builder
	var prevEnd time.Duration
	first := true
	for _, seg := range segments {
		if seg.text == "" {
			continue
		}
		if !first {
			gap := seg.start - prevEnd
			switch {
			case gap > mediumPause:
				sb.WriteString("\n\n")
			case gap > shortPause:
				sb.WriteString("\n")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString(seg.text)
		prevEnd = seg.end
		first = false
	}
	return sb.String()
}
