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

// simrepl is a debug host binary for a single in-process match: it builds a
// world over this module's rts schemas, drives it one tick at a time from a
// readline shell, and mirrors its state to any connected spectator over a
// websocket endpoint. None of the engine packages (world, table, sim) import
// this package; it is a consumer, not a dependency, of the core.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
)

func main() {
	configPath := flag.String("config", "simrepl.json", "path to the simrepl config file")
	addr := flag.String("addr", ":8766", "address the spectator websocket endpoint listens on")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Println("simrepl: no usable config at", *configPath, "- using defaults:", err)
		cfg = defaultConfig()
	}

	host, err := newHost(cfg)
	if err != nil {
		log.Fatalf("simrepl: build world: %v", err)
	}

	hub := newSpectatorHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/spectate", hub.handle)
	go func() {
		if err := http.ListenAndServe(*addr, mux); err != nil {
			log.Println("simrepl: websocket server stopped:", err)
		}
	}()
	fmt.Println("simrepl: spectator endpoint on", *addr, "(path /spectate)")

	watcher, err := watchConfig(*configPath, func(next Config) {
		host.ApplyConfig(next)
		fmt.Println("simrepl: reloaded config from", *configPath)
	})
	if err != nil {
		fmt.Println("simrepl: config hot-reload disabled:", err)
	} else {
		defer watcher.Close()
	}

	if err := runRepl(host, hub); err != nil {
		log.Fatalf("simrepl: %v", err)
	}
}
