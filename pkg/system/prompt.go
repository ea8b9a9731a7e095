package system

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks the operator a yes/no question
type Prompter interface {
	Confirm(message string) bool
}

// LinePrompter reads a single answer line from In
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
	// AssumeYes answers every prompt with yes without reading In
	AssumeYes bool
}

// NewPrompter returns a prompter bound to the process stdin/stdout
func NewPrompter(assumeYes bool) *LinePrompter {
	return &LinePrompter{In: os.Stdin, Out: os.Stdout, AssumeYes: assumeYes}
}

// Confirm prints message and returns true only for y or yes (case-insensitive).
// EOF or a read error counts as no.
func (p *LinePrompter) Confirm(message string) bool {
	if p.AssumeYes {
		return true
	}
	if p.Out != nil {
		fmt.Fprint(p.Out, message)
	}
	if p.In == nil {
		return false
	}
	response, _ := bufio.NewReader(p.In).ReadString('\n')
	return IsAffirmative(response)
}

// IsAffirmative returns true for y or yes, ignoring case and surrounding whitespace
func IsAffirmative(response string) bool {
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// IsInteractive returns true when stdin is attached to a terminal
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
