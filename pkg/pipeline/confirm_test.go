package pipeline

import (
	"bytes"
	"strings"
	"testing"
)

func TestPromptConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" yes \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yeah\n", false},
		{"да\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		confirm := PromptConfirm(strings.NewReader(tt.in), &out)
		if got := confirm("/data/out.csv"); got != tt.want {
			t.Errorf("answer %q: got %v, want %v", tt.in, got, tt.want)
		}
		if !strings.Contains(out.String(), "/data/out.csv") {
			t.Errorf("prompt %q does not name the file", out.String())
		}
	}
}

func TestPromptConfirm_ReadsOneLinePerCall(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	confirm := PromptConfirm(strings.NewReader("y\nn\n"), &out)
	if !confirm("a") {
		t.Errorf("first answer: got false, want true")
	}
	if confirm("b") {
		t.Errorf("second answer: got true, want false")
	}
	if confirm("c") {
		t.Errorf("after EOF: got true, want false")
	}
}
