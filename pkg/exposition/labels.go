package exposition

import "strings"

// scanState is the label splitter state
type scanState int

const (
	stateNormal scanState = iota
	stateInQuotes
	stateEscaped
)

// labelScanner splits a label block on commas that sit outside quoted values
type labelScanner struct {
	input  string
	pos    int       // current position
	start  int       // start of the current token
	state  scanState // current state
	resume scanState // state to return to after an escaped byte
	tokens []string
}

// SplitLabels splits the body of a label block (the text between '{' and '}')
// into name=value tokens. Commas inside double quotes do not split, and a
// backslash makes the following byte literal in or out of quotes. Tokens are
// whitespace-trimmed and a trailing empty token is dropped.
func SplitLabels(body string) []string {
	s := &labelScanner{input: body}
	for ; s.pos < len(s.input); s.pos++ {
		s.step(s.input[s.pos])
	}

	// Flush the last token unless a trailing comma left it empty
	if last := strings.TrimSpace(s.input[s.start:]); last != "" {
		s.tokens = append(s.tokens, last)
	}
	return s.tokens
}

func (s *labelScanner) step(ch byte) {
	switch s.state {
	case stateEscaped:
		s.state = s.resume
	case stateInQuotes:
		switch ch {
		case '\\':
			s.resume, s.state = stateInQuotes, stateEscaped
		case '"':
			s.state = stateNormal
		}
	default:
		switch ch {
		case '\\':
			s.resume, s.state = stateNormal, stateEscaped
		case '"':
			s.state = stateInQuotes
		case ',':
			s.tokens = append(s.tokens, strings.TrimSpace(s.input[s.start:s.pos]))
			s.start = s.pos + 1
		}
	}
}

// ParseLabel parses one name="value" token produced by SplitLabels.
// ok is false when the token has no '=' or the value is not wrapped in
// double quotes. The only escape interpreted in the value is \" -> ".
// The name is returned as written; callers validate it with ValidLabelName.
func ParseLabel(token string) (name, value string, ok bool) {
	eq := strings.IndexByte(token, '=')
	if eq < 0 {
		return "", "", false
	}

	name = strings.TrimSpace(token[:eq])
	raw := strings.TrimSpace(token[eq+1:])
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", "", false
	}

	return name, strings.ReplaceAll(raw[1:len(raw)-1], `\"`, `"`), true
}
