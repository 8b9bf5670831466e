package exposition

import (
	"strconv"
	"strings"
)

// ParseLine validates one exposition line and returns the typed record.
// On failure the returned error is a *ParseError and the Record is zero.
func ParseLine(raw string) (Record, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Record{}, &ParseError{Kind: EmptyLine}
	}

	// Metric name + label block span.
	// With labels the span runs through the first '}', otherwise up to the first space.
	spanEnd := strings.IndexByte(line, '}')
	if spanEnd >= 0 {
		spanEnd++
	} else {
		spanEnd = strings.IndexByte(line, ' ')
		if spanEnd < 0 {
			return Record{}, newParseError(MissingSpaceAfterMetricName, "no space separates %q from a value", line)
		}
	}
	if spanEnd >= len(line) || line[spanEnd] != ' ' {
		return Record{}, newParseError(MissingSpaceAfterMetricName, "expected a space after %q", line[:spanEnd])
	}

	rec := Record{}

	// Value and optional timestamp
	fields := strings.Split(strings.TrimSpace(line[spanEnd:]), " ")
	if len(fields) > 2 {
		return Record{}, newParseError(InvalidValueFormat, "expected value and optional timestamp, got %d fields", len(fields))
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, newParseError(InvalidNumericValue, "%q is not a float", fields[0])
	}
	rec.Value = value

	if len(fields) == 2 {
		ts, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return Record{}, newParseError(InvalidTimestamp, "%q is not an integer timestamp", fields[1])
		}
		rec.Timestamp = &ts
	}

	span := line[:spanEnd]
	open := strings.IndexByte(span, '{')
	if open < 0 {
		name := strings.TrimSpace(span)
		if !ValidMetricName(name) {
			return Record{}, newParseError(InvalidMetricNameFormat, "invalid metric name %q", name)
		}
		rec.MetricName = name
		return rec, nil
	}

	name := span[:open]
	if !ValidMetricName(name) {
		return Record{}, newParseError(InvalidMetricNameFormat, "invalid metric name %q", name)
	}
	rec.MetricName = name

	closeIdx := strings.LastIndexByte(span, '}')
	if closeIdx < open {
		return Record{}, newParseError(UnclosedLabelBrackets, "label block of %q is not closed", name)
	}

	body := span[open+1 : closeIdx]
	if strings.TrimSpace(body) == "" {
		return rec, nil
	}

	for _, token := range SplitLabels(body) {
		labelName, labelValue, ok := ParseLabel(token)
		if !ok {
			return Record{}, newParseError(InvalidLabelFormat, "malformed label %q", token)
		}
		if !ValidLabelName(labelName) {
			return Record{}, newParseError(InvalidLabelName, "invalid label name %q", labelName)
		}
		rec.Labels.Set(labelName, labelValue)
	}

	return rec, nil
}
