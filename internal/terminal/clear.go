// Package terminal provides utilities for terminal operations such as clearing
// prompts and reading secrets without echo.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultWidth = 80

// Width returns the width of stdout, or 80 when it is not a terminal.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultWidth
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// linesFor returns how many terminal rows textLength characters occupy.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	n := int(math.Ceil(float64(textLength) / float64(width)))
	if n < 1 {
		n = 1
	}
	return n
}

// ClearPreviousLines clears text from the terminal that was previously printed.
// textLength is the prompt plus the user's input. The extra line created by
// Enter is cleared too.
func ClearPreviousLines(textLength int) {
	linesToClear := linesFor(textLength, Width()) + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A")
		}
	}
}

// Prompt prints prompt and reads one line from r.
func Prompt(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret prints prompt and reads a line without echo when stdin is a
// terminal. Otherwise it falls back to reading a plain line from r.
func ReadSecret(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if !IsInteractive() {
		return Prompt(r, w, prompt)
	}
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
