/*
Package exposition parses single lines of the Prometheus text exposition format.

# Grammar

Every non-blank line must look like:

	metric_name{label="value",...} value [timestamp]

  - metric_name matches [A-Za-z_:][A-Za-z0-9_:]*
  - the label block is optional; "m{} 1" is a line with zero labels
  - label names match [A-Za-z_][A-Za-z0-9_]*
  - label values are always double-quoted; \" is the only escape that is
    unescaped in the parsed value
  - value is a float64 literal (NaN, Inf, +Inf and -Inf are accepted)
  - timestamp is an optional base-10 int64

Comment lines (# HELP, # TYPE) and other format extensions are not special
cased. They are data lines and fail the grammar like any other malformed input.

# Parsing

ParseLine never panics and never returns a partially populated Record:

	rec, err := exposition.ParseLine(`http_requests_total{method="GET"} 1027 1395066363000`)
	if err != nil {
	    kind := exposition.KindOf(err) // e.g. exposition.InvalidTimestamp
	    ...
	}

Errors are *ParseError values wrapping an ErrorKind, so callers can match a
class of failure with errors.Is:

	if errors.Is(err, exposition.InvalidLabelName) { ... }

# Brace boundaries

The metric+label span ends right after the first '}' in the line, and the
label block is terminated by the last '}' inside that span. A quoted label
value containing '}' therefore cuts the span short. This mirrors the behaviour
of the validators this package replaces and is kept on purpose for output
compatibility.

# Identity keys

Record.IdentityKey renders the metric name followed by the label set sorted by
label name. Two lines describing the same series yield the same key no matter
how their labels were ordered:

	m{b="2",a="1"} 1   ->   m{a="1",b="2"}
*/
package exposition
