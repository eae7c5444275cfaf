// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned when the user enters nothing.
var ErrEmptyInput = errors.New("no input given")

// readPassword and isTerminal are replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ReadSecret prints prompt to w and reads a line from stdin. On a terminal the
// input is not echoed; otherwise (piped input) the first line is read as-is.
func ReadSecret(w io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return ReadLine(bufio.NewReader(os.Stdin))
	}

	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	b, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// ReadLine reads one trimmed line from r. A final line without a newline is
// accepted.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		if errors.Is(err, io.EOF) {
			return "", ErrEmptyInput
		}
		return "", err
	}
	s := strings.TrimSpace(line)
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}
