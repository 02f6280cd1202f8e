package core

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "trimmed", in: "  hi there \t\n", want: "hi there"},
		{name: "whitespace only", in: " \t\r\n ", want: ""},
		{name: "ampersand once", in: "a & b", want: "a &amp b"},
		{name: "angle brackets", in: "<b>", want: "&ltb&gt"},
		{name: "quotes", in: `"it's"`, want: "&quotit&#39s&quot"},
		{name: "slash", in: "a/b", want: "a&#x2Fb"},
		{name: "newline run", in: "a\n\n\nb", want: "a<br/>b"},
		{name: "crlf", in: "a\r\nb", want: "a<br/>b"},
		{name: "tabs removed", in: "a\t\tb", want: "ab"},
		{name: "entity not double escaped", in: "&lt;", want: "&amplt;"},
		{name: "invalid utf8 replaced", in: "caf\xe9", want: "caf\uFFFD"},
		{name: "invalid utf8 run collapses", in: "a\xff\xfeb", want: "a\uFFFDb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeScript(t *testing.T) {
	got := Sanitize("<script>alert(1)</script>")
	if strings.ContainsAny(got, "<>") {
		t.Fatalf("sanitized text still contains angle brackets: %q", got)
	}
	if want := "&ltscript&gtalert(1)&lt&#x2Fscript&gt"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeStepsOrder(t *testing.T) {
	if EscapeSteps[0].Name != "amp" {
		t.Fatalf("ampersand step must run first, got %q", EscapeSteps[0].Name)
	}

	index := make(map[string]int, len(EscapeSteps))
	for i, st := range EscapeSteps {
		index[st.Name] = i
	}
	if index["slash"] > index["newline"] {
		t.Fatal("newline step must run after slash step so <br/> is kept")
	}
}

func TestEscapeStepApplySkipsWithoutMatch(t *testing.T) {
	for _, st := range EscapeSteps {
		if got := st.Apply("plain"); got != "plain" {
			t.Fatalf("step %s changed unmatched input: %q", st.Name, got)
		}
	}
}
