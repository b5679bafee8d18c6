package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// test seams for the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

type lineResult struct {
	line string
	err  error
}

// lineReader reads lines on demand from a single goroutine so that a
// blocked read can be abandoned when ctx is cancelled. Nothing is read
// ahead, which leaves the terminal free for password prompts.
type lineReader struct {
	req chan struct{}
	res chan lineResult
}

func newLineReader(r io.Reader) *lineReader {
	l := &lineReader{
		req: make(chan struct{}),
		res: make(chan lineResult, 1),
	}
	br := bufio.NewReader(r)
	go func() {
		for range l.req {
			line, err := br.ReadString('\n')
			if errors.Is(err, io.EOF) && len(line) > 0 {
				err = nil
			}
			l.res <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
		}
	}()
	return l
}

func (l *lineReader) readLine(ctx context.Context) (string, error) {
	select {
	case l.req <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case r := <-l.res:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// prompt prints label and reads one trimmed line.
//
//	Label
//	> _
func (a *App) prompt(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(a.out, label+"\n> "); err != nil {
		return "", err
	}
	line, err := a.in.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal and
// as a plain line otherwise. The caller wipes the returned slice.
func (a *App) promptPassword(ctx context.Context, label string) ([]byte, error) {
	if _, err := fmt.Fprint(a.out, label+": "); err != nil {
		return nil, err
	}

	fd := stdinFd()
	if !isTerminal(fd) {
		line, err := a.in.readLine(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	pw, err := readPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// stop ends the reading goroutine once any pending read returns.
func (l *lineReader) stop() {
	close(l.req)
}
