// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal reads interactive input and tidies the terminal afterwards.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/term"
)

// width reports the terminal width, or 0 when it is unknown.
var width = func() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// ClearPreviousLines erases a prompt of textLength characters (prompt plus
// echoed input) from w, including the empty line left after Enter.
func ClearPreviousLines(w io.Writer, textLength int) {
	termWidth := 80
	if tw := width(); tw > 0 {
		termWidth = tw
	}

	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}

	linesToClear := totalLines + 1
	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
