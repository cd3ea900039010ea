package markdown

import "testing"

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"Error fetching blog: ERROR: 404.", `Error fetching blog: ERROR: 404\.`},
		{"a_b*c[d](e)", `a\_b\*c\[d\]\(e\)`},
		{`back\slash`, `back\\slash`},
		{"ünïcödé!", `ünïcödé\!`},
	}

	for _, test := range tests {
		if got := EscapeV2(test.input); got != test.want {
			t.Errorf("EscapeV2(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestLink(t *testing.T) {
	got := Link("My post (draft)", "https://example.com/a_(b)")
	want := `[My post \(draft\)](https://example.com/a_(b\))`

	if got != want {
		t.Errorf("Link() = %q, want %q", got, want)
	}
}
