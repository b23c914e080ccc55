package search

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBuildMatchQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"air max", `"air" "max"`},
		{"  dunk  ", `"dunk"`},
		{`panda "low"`, `"panda" """low"""`},
		{"", ""},
		{"   ", ""},
		{`"""`, ""},
		{"NOT near", `"NOT" "near"`},
	}
	for _, tt := range tests {
		if got := BuildMatchQuery(tt.in); got != tt.want {
			t.Errorf("BuildMatchQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Every non-empty output is a sequence of quoted phrases: starts and
// ends with a quote, and any interior quote run inside a phrase has even
// length. Quoted phrases are inert to the FTS5 expression parser, so
// this property is what keeps arbitrary input from becoming syntax.
func TestProperty_MatchQueryAlwaysQuoted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("output is empty or fully phrase-quoted", prop.ForAll(
		func(text string) bool {
			out := BuildMatchQuery(text)
			if out == "" {
				return true
			}
			for _, phrase := range strings.Split(out, " ") {
				if len(phrase) < 2 || phrase[0] != '"' || phrase[len(phrase)-1] != '"' {
					return false
				}
				// Interior quotes must come in doubled pairs.
				inner := phrase[1 : len(phrase)-1]
				if strings.Count(inner, `"`)%2 != 0 {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("token count never exceeds input fields", prop.ForAll(
		func(text string) bool {
			out := BuildMatchQuery(text)
			if out == "" {
				return true
			}
			return len(strings.Split(out, " ")) <= len(strings.Fields(text))
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
