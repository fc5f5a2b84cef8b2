package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmFunc asks whether the existing file at path may be overwritten.
type ConfirmFunc func(path string) bool

// AlwaysConfirm overwrites without asking.
func AlwaysConfirm(string) bool { return true }

// PromptConfirm asks on out and reads a single line from in. Only "y" or "yes"
// confirm; anything else, including EOF, declines.
func PromptConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(path string) bool {
		_, err := fmt.Fprintf(out, "\nFile already exists: %s\nOverwrite? (y/n): ", path)
		if err != nil {
			return false
		}

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
