package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"":                      "''",
		"simple":                "simple",
		"/opt/app/bin/myapp":    "/opt/app/bin/myapp",
		"with space":            "'with space'",
		"semi;colon":            "'semi;colon'",
		"dollar$var":            "'dollar$var'",
		"back`tick`":            "'back`tick`'",
		"it's":                  "'it'\\''s'",
		"--flag=value":          "--flag=value",
		"host:2222":             "host:2222",
		"a&&b":                  "'a&&b'",
		"tab\there":             "'tab\there'",
		"редкий/путь":           "'редкий/путь'",
		"/tmp/myapp.output":     "/tmp/myapp.output",
		"wild*card":             "'wild*card'",
		"redirect>file":         "'redirect>file'",
		"sub$(shell)":           "'sub$(shell)'",
		"new\nline":             "'new\nline'",
		"quote\"double":         "'quote\"double'",
		"paren(s)":              "'paren(s)'",
		"comma,plus+equals=ok.": "comma,plus+equals=ok.",
	}
	for in, want := range cases {
		require.Equal(t, want, shellQuote(in), "input %q", in)
	}
}
