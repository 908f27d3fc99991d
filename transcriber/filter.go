package transcriber

import "strings"

// Postprocess trims segment text, drops blank and non-speech segments when
// SuppressBlank is set, and collapses the result into a single segment when
// SingleSegment is set.
func Postprocess(segs []Segment, cfg Config) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		s.Text = strings.TrimSpace(s.Text)
		if cfg.SuppressBlank && IsNonSpeech(s.Text) {
			continue
		}
		out = append(out, s)
	}
	if cfg.SingleSegment && len(out) > 1 {
		return []Segment{merge(out)}
	}
	return out
}

func merge(segs []Segment) Segment {
	texts := make([]string, len(segs))
	var tokens []Token
	for i, s := range segs {
		texts[i] = s.Text
		tokens = append(tokens, s.Tokens...)
	}
	return Segment{
		Start:  segs[0].Start,
		End:    segs[len(segs)-1].End,
		Text:   strings.Join(texts, " "),
		Tokens: tokens,
	}
}

// IsNonSpeech reports whether text is empty or consists only of bracketed
// annotations such as [BLANK_AUDIO] or (wind blowing).
func IsNonSpeech(text string) bool {
	t := strings.TrimSpace(text)
	for t != "" {
		var closer byte
		switch t[0] {
		case '[':
			closer = ']'
		case '(':
			closer = ')'
		case '*':
			closer = '*'
		default:
			return false
		}
		end := strings.IndexByte(t[1:], closer)
		if end < 0 {
			return false
		}
		t = strings.TrimSpace(t[end+2:])
	}
	return true
}
