package input

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

// TestDecode verifies byte sequences map to the expected keys.
func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "printable", in: "ab", want: []string{"a", "b"}},
		{name: "utf8", in: "é", want: []string{"é"}},
		{name: "space", in: " ", want: []string{"space"}},
		{name: "enter", in: "\r", want: []string{"enter"}},
		{name: "tab", in: "\t", want: []string{"tab"}},
		{name: "backspace", in: "\x7f", want: []string{"backspace"}},
		{name: "ctrl letter", in: "\x05", want: []string{"ctrl+e"}},
		{name: "ctrl c", in: "\x03", want: []string{"ctrl+c"}},
		{name: "escape", in: "\x1b", want: []string{"esc"}},
		{name: "csi arrows", in: "\x1b[A\x1b[B\x1b[C\x1b[D", want: []string{"up", "down", "right", "left"}},
		{name: "ss3 arrows", in: "\x1bOA\x1bOB", want: []string{"up", "down"}},
		{name: "delete", in: "\x1b[3~", want: []string{"delete"}},
		{name: "alt chord", in: "\x1bx", want: []string{"alt+x"}},
		{name: "unknown csi dropped", in: "\x1b[200~q", want: []string{"q"}},
		{name: "mixed", in: "q\x1b[Bd", want: []string{"q", "down", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode([]byte(tc.in))
			if len(got) != len(tc.want) {
				t.Fatalf("Decode(%q) = %d keys %v, want %v", tc.in, len(got), got, tc.want)
			}
			for i, k := range got {
				if k.String() != tc.want[i] {
					t.Fatalf("Decode(%q)[%d] = %q, want %q", tc.in, i, k.String(), tc.want[i])
				}
			}
		})
	}
}

// TestDecodeCtrlCarriesModifier verifies control letters are ctrl chords without text.
func TestDecodeCtrlCarriesModifier(t *testing.T) {
	keys := Decode([]byte{0x0f})
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %d", len(keys))
	}
	if keys[0].Mod&tea.ModCtrl == 0 || keys[0].Code != 'o' || keys[0].Text != "" {
		t.Fatalf("unexpected ctrl key %#v", keys[0])
	}
}

// TestDecodeStreamKeepsTruncatedTail verifies sequences cut by a chunk boundary are held back.
func TestDecodeStreamKeepsTruncatedTail(t *testing.T) {
	cases := []struct {
		name     string
		first    string
		second   string
		wantTail string
		want     []string
	}{
		{name: "csi", first: "a\x1b[", second: "A", wantTail: "\x1b[", want: []string{"a", "up"}},
		{name: "csi params", first: "\x1b[3", second: "~", wantTail: "\x1b[3", want: []string{"delete"}},
		{name: "ss3", first: "\x1bO", second: "B", wantTail: "\x1bO", want: []string{"down"}},
		{name: "utf8", first: "x\xc3", second: "\xa9", wantTail: "\xc3", want: []string{"x", "é"}},
		{name: "alt utf8", first: "\x1b\xc3", second: "\xa9", wantTail: "\x1b\xc3", want: []string{"alt+é"}},
		{name: "complete", first: "ab", second: "", wantTail: "", want: []string{"a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keys, rest := DecodeStream([]byte(tc.first))
			if string(rest) != tc.wantTail {
				t.Fatalf("tail = %q, want %q", rest, tc.wantTail)
			}
			more, rest := DecodeStream(append(rest, tc.second...))
			if len(rest) != 0 {
				t.Fatalf("unexpected tail %q after second chunk", rest)
			}
			keys = append(keys, more...)
			if len(keys) != len(tc.want) {
				t.Fatalf("got %d keys %v, want %v", len(keys), keys, tc.want)
			}
			for i, k := range keys {
				if k.String() != tc.want[i] {
					t.Fatalf("key %d = %q, want %q", i, k.String(), tc.want[i])
				}
			}
		})
	}
}
