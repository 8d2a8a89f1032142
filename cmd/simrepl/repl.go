/*
Copyright (C) 2023  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dc0d/onexit"
)

const (
	prompt       = "\033[32msimrepl>\033[0m "
	resultprompt = "\033[31m=\033[0m "
)

// runRepl mirrors the teacher's scm.Repl shell loop (readline.Config,
// ^C/EOF handling, a per-line anti-panic recover) narrowed to this host's
// fixed command set — tick, hash, dump, save, load — instead of a full
// language REPL.
func runRepl(h *Host, hub *spectatorHub) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       ".simrepl-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("simrepl: readline: %w", err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	onexit.Register(func() {
		fmt.Println("simrepl: flushing readline history and exiting")
	})

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("simrepl: panic:", r)
				}
			}()
			runCommand(h, hub, line)
		}()
	}
}

// runCommand dispatches one REPL line. It is split out from runRepl so it
// can be exercised directly in tests without a real terminal.
func runCommand(h *Host, hub *spectatorHub, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "tick":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("simrepl: tick: bad count:", fields[1])
				return
			}
			n = v
		}
		h.Tick(n)
		fmt.Printf("%sframe=%d\n", resultprompt, h.Frame())
		if hub != nil {
			hub.broadcastState(h)
		}
	case "hash":
		fmt.Printf("%s%d\n", resultprompt, h.Hash())
	case "dump":
		data, err := h.DumpJSON()
		if err != nil {
			fmt.Println("simrepl: dump:", err)
			return
		}
		fmt.Printf("%s%s\n", resultprompt, data)
	case "save":
		if len(fields) < 2 {
			fmt.Println("simrepl: usage: save <path>")
			return
		}
		if err := h.Save(fields[1]); err != nil {
			fmt.Println("simrepl:", err)
			return
		}
		fmt.Printf("%ssaved %s\n", resultprompt, fields[1])
	case "load":
		if len(fields) < 2 {
			fmt.Println("simrepl: usage: load <path>")
			return
		}
		if err := h.Load(fields[1]); err != nil {
			fmt.Println("simrepl:", err)
			return
		}
		fmt.Printf("%sloaded %s\n", resultprompt, fields[1])
	default:
		fmt.Println("simrepl: unknown command:", fields[0])
	}
}
