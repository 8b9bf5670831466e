package exposition

import "sort"

// Label is a single name/value pair attached to a series
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Labels keeps label pairs in the order they were first seen in the source
// line. Names are unique: setting an existing name replaces its value in place.
type Labels []Label

// Set adds or overwrites the value for name
func (ls *Labels) Set(name, value string) {
	for i := range *ls {
		if (*ls)[i].Name == name {
			(*ls)[i].Value = value
			return
		}
	}
	*ls = append(*ls, Label{Name: name, Value: value})
}

// Get returns the value for name
func (ls Labels) Get(name string) (string, bool) {
	for _, l := range ls {
		if l.Name == name {
			return l.Value, true
		}
	}
	return "", false
}

// Map returns the labels as a plain map
func (ls Labels) Map() map[string]string {
	m := make(map[string]string, len(ls))
	for _, l := range ls {
		m[l.Name] = l.Value
	}
	return m
}

// Sorted returns a copy ordered by label name (byte order)
func (ls Labels) Sorted() Labels {
	sorted := make(Labels, len(ls))
	copy(sorted, ls)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Record is one validated data point
type Record struct {
	MetricName string  `json:"metric_name"`
	Labels     Labels  `json:"labels,omitempty"`
	Value      float64 `json:"value"`

	// Timestamp is nil when the source line had none
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Outcome pairs a raw line with the result of parsing it.
// Exactly one of Record (when Err is nil) and Err is meaningful.
type Outcome struct {
	Raw    string
	Record Record
	Err    error
}

// Valid reports whether the line parsed
func (o Outcome) Valid() bool {
	return o.Err == nil
}

// Parse runs ParseLine over raw and wraps the result
func Parse(raw string) Outcome {
	rec, err := ParseLine(raw)
	return Outcome{Raw: raw, Record: rec, Err: err}
}
