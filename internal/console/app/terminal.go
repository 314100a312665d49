package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Terminal is the console's line-oriented user interface. Output may come
// from background goroutines (banners, toasts), so writes are serialised.
type Terminal struct {
	r *bufio.Reader

	mu  sync.Mutex
	out io.Writer

	// fd is set when input is an interactive terminal, enabling hidden
	// password entry.
	fd    int
	isTTY bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{r: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.isTTY = true
	}
	return t
}

// Write implements io.Writer so views can render straight to the terminal.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Write(p)
}

// Println writes a line.
func (t *Terminal) Println(a ...any) {
	_, _ = fmt.Fprintln(t, a...)
}

// ReadLine returns the next input line without its line ending. A final
// line without newline is returned before io.EOF.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Prompt(label string) (string, error) {
	_, _ = fmt.Fprintf(t, "%s: ", label)
	return t.ReadLine()
}

// PromptSecret reads without echo on a terminal and falls back to a plain
// line otherwise.
func (t *Terminal) PromptSecret(label string) (string, error) {
	_, _ = fmt.Fprintf(t, "%s: ", label)
	if !t.isTTY {
		return t.ReadLine()
	}

	b, err := term.ReadPassword(t.fd)
	t.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
