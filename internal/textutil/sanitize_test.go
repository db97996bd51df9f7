package textutil_test

import (
	"testing"

	"hearth/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "monthly statement", want: "monthly statement"},
		{name: "separators", input: "2024/01: January", want: "2024-01- January"},
		{name: "hostile characters", input: `what? "really" <yes>|no*`, want: "what really yesno"},
		{name: "whitespace runs", input: "  spaced \t out  ", want: "spaced out"},
		{name: "trailing dots", input: "archive...", want: "archive"},
		{name: "empty", input: "  ", want: "untitled"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeFileName(tc.input); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := textutil.CollapseSpaces(" a  b\tc "); got != "a b c" {
		t.Fatalf("CollapseSpaces = %q", got)
	}
}
