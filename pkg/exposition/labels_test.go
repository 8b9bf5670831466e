package exposition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitLabels(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "single label",
			body:     `a="1"`,
			expected: []string{`a="1"`},
		},
		{
			name:     "two labels",
			body:     `a="1",b="2"`,
			expected: []string{`a="1"`, `b="2"`},
		},
		{
			name:     "comma inside quotes",
			body:     `a="x,y",b="2"`,
			expected: []string{`a="x,y"`, `b="2"`},
		},
		{
			name:     "escaped quote keeps quote state",
			body:     `a="x\",y",b="2"`,
			expected: []string{`a="x\",y"`, `b="2"`},
		},
		{
			name:     "escaped comma outside quotes",
			body:     `a\,b="1"`,
			expected: []string{`a\,b="1"`},
		},
		{
			name:     "trailing comma dropped",
			body:     `a="1",`,
			expected: []string{`a="1"`},
		},
		{
			name:     "tokens trimmed",
			body:     ` a="1" , b="2" `,
			expected: []string{`a="1"`, `b="2"`},
		},
		{
			name:     "interior empty token kept",
			body:     `a="1",,b="2"`,
			expected: []string{`a="1"`, "", `b="2"`},
		},
		{
			name:     "escaped backslash before closing quote",
			body:     `a="x\\",b="2"`,
			expected: []string{`a="x\\"`, `b="2"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SplitLabels(tt.body))
		})
	}
}

func TestSplitLabels_Empty(t *testing.T) {
	require.Empty(t, SplitLabels(""))
	require.Empty(t, SplitLabels("   "))
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name  string
		token string
		label string
		value string
		ok    bool
	}{
		{"quoted", `job="api"`, "job", "api", true},
		{"empty value", `job=""`, "job", "", true},
		{"escaped quote", `k="va\"lue"`, "k", `va"lue`, true},
		{"other escapes untouched", `k="a\nb\\c"`, "k", `a\nb\\c`, true},
		{"equals inside value", `k="a=b"`, "k", "a=b", true},
		{"spaces around equals", `k = "v"`, "k", "v", true},
		{"no equals", `job`, "", "", false},
		{"unquoted", `job=api`, "", "", false},
		{"missing closing quote", `job="api`, "", "", false},
		{"lone quote", `job="`, "", "", false},
		{"empty", ``, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, value, ok := ParseLabel(tt.token)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.label, name)
			require.Equal(t, tt.value, value)
		})
	}
}

func TestNameValidators(t *testing.T) {
	for _, name := range []string{"m", "_m", ":m", "a:b_c9", "HTTP_total"} {
		require.True(t, ValidMetricName(name), name)
	}
	for _, name := range []string{"", "9m", "m-x", "m x", "m{", "mé"} {
		require.False(t, ValidMetricName(name), name)
	}

	for _, name := range []string{"a", "_a", "a9", "A_b"} {
		require.True(t, ValidLabelName(name), name)
	}
	for _, name := range []string{"", "9a", "a:b", ":a", "a-b"} {
		require.False(t, ValidLabelName(name), name)
	}
}
