package zoom

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"meeting_sync/internal/domain"
)

var (
	// 00:01:02	 From John Doe to Everyone:	hello
	directedLine = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})\t\s*From\s+(.+?)\s+to\s+(.+?):\t?(.*)$`)
	// 00:01:02 From  John Doe : hello
	legacyLine = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})\s+From\s+(.+?)\s+:\s?(.*)$`)
)

// ParseChatTranscript parses a Zoom chat file. Timestamps are offsets from
// base. Lines that do not start a message continue the previous one.
func ParseChatTranscript(data string, base time.Time) []domain.RawChatLine {
	var out []domain.RawChatLine

	for _, raw := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		line := strings.TrimRight(raw, " \r")
		if line == "" {
			continue
		}

		var hh, mm, ss, sender, text string
		if m := directedLine.FindStringSubmatch(line); m != nil {
			hh, mm, ss, sender, text = m[1], m[2], m[3], m[4], m[6]
		} else if m := legacyLine.FindStringSubmatch(line); m != nil {
			hh, mm, ss, sender, text = m[1], m[2], m[3], m[4], m[5]
		} else {
			if len(out) > 0 {
				last := &out[len(out)-1]
				last.Text += "\n" + strings.TrimSpace(line)
			}
			continue
		}

		out = append(out, domain.RawChatLine{
			SenderName: strings.TrimSpace(sender),
			Text:       strings.TrimSpace(text),
			SentAt:     base.Add(offset(hh, mm, ss)),
		})
	}
	return out
}

func offset(hh, mm, ss string) time.Duration {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	s, _ := strconv.Atoi(ss)
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
