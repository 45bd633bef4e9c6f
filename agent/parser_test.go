package agent

import (
	"testing"

	"github.com/meridianbi/boardpulse/normalize"
)

func TestParseBoards(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  []normalize.BoardKind
	}{
		{
			name:  "bare json",
			reply: `{"boards": ["deals"]}`,
			want:  []normalize.BoardKind{normalize.KindDeals},
		},
		{
			name:  "fenced json",
			reply: "```json\n{\"boards\": [\"work_orders\"]}\n```",
			want:  []normalize.BoardKind{normalize.KindWorkOrders},
		},
		{
			name:  "both with prose around",
			reply: "Sure! Here you go: {\"boards\": [\"deals\", \"work_orders\"]} Hope that helps.",
			want:  []normalize.BoardKind{normalize.KindDeals, normalize.KindWorkOrders},
		},
		{
			name:  "aliases and duplicates",
			reply: `{"boards": ["Sales", "deals", "WORK ORDERS"]}`,
			want:  []normalize.BoardKind{normalize.KindDeals, normalize.KindWorkOrders},
		},
		{
			name:  "unknown names skipped",
			reply: `{"boards": ["finance", "deals"]}`,
			want:  []normalize.BoardKind{normalize.KindDeals},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseBoards(tc.reply)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestParseBoardsNoJSON(t *testing.T) {
	if _, err := parseBoards("I cannot classify that."); err == nil {
		t.Fatal("want error for reply without JSON")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
