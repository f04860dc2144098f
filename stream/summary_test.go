package stream

import "testing"

func TestSummarize_ArxivFeed(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name: "feed title dropped, entries counted",
			output: `<feed><title>ArXiv Query Results</title>` +
				`<entry><title>Paper One</title></entry>` +
				`<entry><title>Paper Two</title></entry></feed>`,
			want: "Found 2 papers. Top: Paper One • Paper Two",
		},
		{
			name: "caps at three titles",
			output: `<feed><title>Feed</title>` +
				`<entry><title>A</title></entry><entry><title>B</title></entry>` +
				`<entry><title>C</title></entry><entry><title>D</title></entry></feed>`,
			want: "Found 4 papers. Top: A • B • C",
		},
		{
			name: "whitespace trimmed and collapsed",
			output: `<feed><title>Feed</title>` +
				"<entry><title>  Attention\n   Is All\t You Need </title></entry></feed>",
			want: "Found 1 papers. Top: Attention Is All You Need",
		},
		{
			name:   "no paper titles omits top clause",
			output: `<feed><title>ArXiv Query Results</title></feed>`,
			want:   "Found 0 papers",
		},
		{
			name:   "empty output",
			output: "",
			want:   "Found 0 papers",
		},
		{
			name:   "error placeholder document",
			output: "arXiv API error: HTTP status 503",
			want:   "Found 0 papers",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(ArxivToolName, tc.output)
			if got != tc.want {
				t.Fatalf("Summarize = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSummarize_OtherTool(t *testing.T) {
	got := Summarize("calculator", "<entry><title>ignored</title></entry>")
	if got != "calculator complete" {
		t.Fatalf("Summarize = %q", got)
	}
}
