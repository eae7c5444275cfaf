// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, input string, err error) {
	t.Helper()
	origRead, origIs := readPassword, isTerminal
	readPassword = func(int) ([]byte, error) { return []byte(input), err }
	isTerminal = func(int) bool { return true }
	t.Cleanup(func() { readPassword, isTerminal = origRead, origIs })
}

func TestReadSecret(t *testing.T) {
	stubTerminal(t, "  t1  ", nil)

	var out bytes.Buffer
	got, err := ReadSecret(&out, "Token: ")
	require.NoError(t, err)
	assert.Equal(t, "t1", got)
	assert.Equal(t, "Token: \n", out.String())
}

func TestReadSecret_Empty(t *testing.T) {
	stubTerminal(t, "", nil)

	_, err := ReadSecret(&bytes.Buffer{}, "Token: ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestReadSecret_ReadError(t *testing.T) {
	boom := errors.New("boom")
	stubTerminal(t, "", boom)

	_, err := ReadSecret(&bytes.Buffer{}, "Token: ")
	assert.ErrorIs(t, err, boom)
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "abc\n", want: "abc"},
		{in: "abc", want: "abc"},
		{in: "  abc \r\nnext\n", want: "abc"},
		{in: "", wantErr: ErrEmptyInput},
		{in: "\n", wantErr: ErrEmptyInput},
	}
	for _, tt := range tests {
		got, err := ReadLine(bufio.NewReader(strings.NewReader(tt.in)))
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestClearPreviousLines(t *testing.T) {
	orig := width
	width = func() int { return 10 }
	t.Cleanup(func() { width = orig })

	var out bytes.Buffer
	ClearPreviousLines(&out, 25)

	// 3 wrapped lines plus the line left by Enter.
	assert.Equal(t, 4, strings.Count(out.String(), "\x1b[2K"))
	assert.Equal(t, 3, strings.Count(out.String(), "\x1b[1A"))
}
