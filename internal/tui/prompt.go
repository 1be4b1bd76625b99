package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers from a line-oriented input.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the next input line without surrounding spaces.
// fallback is returned for an empty answer.
func (p *Prompter) Ask(label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *Prompter) Confirm(prompt string) bool {
	answer, err := p.Ask(prompt+" (y/N)", "")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// Notifier prints mutation outcomes.
type Notifier struct {
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Success(message string) {
	fmt.Fprintf(n.out, "✓ %s\n", message)
}

func (n *Notifier) Error(message string) {
	fmt.Fprintf(n.out, "✗ %s\n", message)
}
