package exposition

import (
	"math"
	"strconv"
	"strings"
)

// IdentityKey returns the series identity: metric name plus the label set
// sorted by name, e.g. http_requests_total{method="GET",status="200"}.
// Records without labels render as the bare metric name.
//
// Label values are written through EscapeValue, so a parsed value containing
// a double quote, backslash or line feed appears as \", \\ or \n in the key
// rather than verbatim. This keeps distinct label sets from sharing a key.
func (r Record) IdentityKey() string {
	var b strings.Builder
	b.WriteString(r.MetricName)
	writeLabels(&b, r.Labels)
	return b.String()
}

// Format re-serializes the record in canonical form: sorted labels,
// shortest float representation and the timestamp when present.
func (r Record) Format() string {
	var b strings.Builder
	b.WriteString(r.MetricName)
	writeLabels(&b, r.Labels)
	b.WriteByte(' ')
	b.WriteString(FormatValue(r.Value))
	if r.Timestamp != nil {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(*r.Timestamp, 10))
	}
	return b.String()
}

// FormatValue renders a sample value the way Prometheus scrapers expect
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

// writeLabels writes {k="v",...} in name order, nothing for an empty set
func writeLabels(b *strings.Builder, labels Labels) {
	if len(labels) == 0 {
		return
	}

	b.WriteByte('{')
	for i, l := range labels.Sorted() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeValue(l.Value))
		b.WriteByte('"')
	}
	b.WriteByte('}')
}

// EscapeValue escapes backslash, double-quote and line feed in a label value
func EscapeValue(s string) string {
	if !strings.ContainsAny(s, "\\\"\n") {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
