// Package console implements the interactive menu session on top of the
// expense service.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"expenses/internal/core"
)

// Messages printed when input is rejected and the question is asked again.
const (
	MsgInvalidDate  = "Invalid Date Format!!"
	MsgInvalidYesNo = "\nInvalid input, please enter 'Y' or 'N'."
)

// Prompter writes a prompt and reads the answer line by line. Input is read
// on a background goroutine so that a cancelled context ends a blocked prompt.
type Prompter struct {
	out   io.Writer
	lines chan string
	done  chan struct{}
	once  sync.Once
	err   error
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		out:   out,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go p.read(in)
	return p
}

func (p *Prompter) read(in io.Reader) {
	defer close(p.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case p.lines <- strings.TrimSuffix(sc.Text(), "\r"):
		case <-p.done:
			return
		}
	}
	p.err = sc.Err()
}

// Close stops delivering input. A read already blocked on the underlying
// reader is abandoned.
func (p *Prompter) Close() {
	p.once.Do(func() { close(p.done) })
}

// Line prints prompt and returns the next input line without its newline.
// It returns io.EOF when input is exhausted and ctx.Err() when ctx ends first.
func (p *Prompter) Line(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			if p.err != nil {
				return "", fmt.Errorf("read input: %w", p.err)
			}
			return "", io.EOF
		}
		return line, nil
	}
}

// Date asks until the answer is a valid d-m-yyyy date.
func (p *Prompter) Date(ctx context.Context, prompt string) (core.Date, error) {
	for {
		line, err := p.Line(ctx, prompt)
		if err != nil {
			return core.Date{}, err
		}
		d, err := core.ParseDate(line)
		if err == nil {
			return d, nil
		}
		fmt.Fprintln(p.out, MsgInvalidDate)
	}
}

// YesNo asks until the answer is Y or N, ignoring case and surrounding space.
func (p *Prompter) YesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		line, err := p.Line(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}
		fmt.Fprintln(p.out, MsgInvalidYesNo)
	}
}
