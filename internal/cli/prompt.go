package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Inputs with special meaning in interactive prompts.
var (
	exitInputs = map[string]bool{"q": true, "quit": true, "exit": true}
	yesInputs  = map[string]bool{"y": true, "yes": true}
	helpInputs = map[string]bool{"?": true, "help": true}
)

// errAborted is returned when the user types an exit word mid-prompt.
var errAborted = errors.New("aborted by user")

// prompter reads answers line by line from in and writes questions to out.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer. io.EOF is returned
// once input is exhausted and nothing was read.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question. Only y/yes count as yes.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	return yesInputs[strings.ToLower(answer)], nil
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func isExit(s string) bool {
	return exitInputs[strings.ToLower(s)]
}

func isHelp(s string) bool {
	return helpInputs[strings.ToLower(s)]
}
