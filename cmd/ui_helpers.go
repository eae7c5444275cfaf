// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// interactive reports whether stdout is a terminal. Replaced in tests.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// withSpinner runs fn while an area spinner shows text. The area is removed
// when fn returns. Without a terminal fn simply runs.
func withSpinner(text string, fn func() error) error {
	if !interactive() {
		return fn()
	}

	cursor.Hide()
	defer cursor.Show()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return fn()
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		i := 0
		for {
			area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			select {
			case <-t.C:
				i++
			case <-stop:
				return
			}
		}
	}()

	ferr := fn()
	close(stop)
	wg.Wait()
	_ = area.Stop()
	return ferr
}

func printNotLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'rustatl login' to get started.")
}
