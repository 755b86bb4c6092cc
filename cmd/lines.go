package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// LineReader reads command lines typed by the user.
type LineReader interface {
	// ReadLine returns the next line, or io.EOF at the end of the input.
	ReadLine(prompt string) (string, error)
}

// plainReader reads lines from any reader, echoing the prompt to w.
type plainReader struct {
	w io.Writer
	r *bufio.Reader
}

// NewLineReader returns a LineReader over 'r' that prints prompts to 'w'.
func NewLineReader(w io.Writer, r io.Reader) LineReader {
	return &plainReader{w: w, r: bufio.NewReader(r)}
}

func (p *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	line, err := p.r.ReadString('\n')
	if err == io.EOF && line != "" {
		// the last line is not terminated.
		return line, nil
	}
	return line, err
}

// sessionCommands are the session command names, for completion.
var sessionCommands = []string{"add", "analyze", "buy", "bye", "help", "list", "news", "portfolio", "refresh", "sell", "show"}

// completeCommand completes the command name being typed.
func completeCommand(line string) (c []string) {
	if strings.Contains(line, " ") {
		return nil
	}
	for _, name := range sessionCommands {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			c = append(c, name)
		}
	}
	return c
}

// termReader reads lines from an interactive terminal, with line editing
// and a history kept across sessions.
type termReader struct {
	*liner.State
	history string
}

func newTermReader() *termReader {
	t := &termReader{
		State:   liner.NewLiner(),
		history: filepath.Join(os.TempDir(), "papertrade-history"),
	}
	t.SetCtrlCAborts(true)
	t.SetCompleter(completeCommand)
	if f, err := os.Open(t.history); err == nil {
		t.ReadHistory(f)
		f.Close()
	}
	return t
}

func (t *termReader) ReadLine(prompt string) (string, error) {
	for {
		line, err := t.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue // Ctrl+C, just show a new prompt
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			t.AppendHistory(line)
		}
		return line, nil
	}
}

// Close saves the history and restores the terminal.
func (t *termReader) Close() error {
	if f, err := os.Create(t.history); err == nil {
		t.WriteHistory(f)
		f.Close()
	}
	return t.State.Close()
}
