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
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// spectatorHub pushes the host's latest state hash and debug dump to every
// connected spectator, the same role memcp's scm/network.go "websocket"
// builtin plays for pushing query results to a JS frontend — generalized
// from one scheme-script-driven connection with a closure-returned send
// callback to a small connection registry so every tick can fan out to
// every spectator at once. Each connection gets a uuid session id purely
// for log correlation; it is never sent to the client.
type spectatorHub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newSpectatorHub() *spectatorHub {
	return &spectatorHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
	}
}

func (hub *spectatorHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("simrepl: websocket upgrade:", err)
		return
	}
	id := uuid.New().String()

	hub.mu.Lock()
	hub.conns[id] = conn
	hub.mu.Unlock()
	log.Println("simrepl: spectator connected:", id)

	go func() {
		defer func() {
			hub.mu.Lock()
			delete(hub.conns, id)
			hub.mu.Unlock()
			conn.Close()
			log.Println("simrepl: spectator disconnected:", id)
		}()
		for {
			// this endpoint is read-only from the spectator's side; the read
			// loop only exists to notice the connection close, same as the
			// teacher's websocket receive loop does for its onClose callback.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcastState pushes h's current frame, hash, and debug dump to every
// connected spectator as one JSON text frame.
func (hub *spectatorHub) broadcastState(h *Host) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.conns) == 0 {
		return
	}

	dump, err := h.DumpJSON()
	if err != nil {
		log.Println("simrepl: broadcast: dump:", err)
		return
	}
	payload := append([]byte(fmt.Sprintf(`{"frame":%d,"hash":%d,"state":`, h.Frame(), h.Hash())), dump...)
	payload = append(payload, '}')

	for id, conn := range hub.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Println("simrepl: broadcast to", id, "failed:", err)
		}
	}
}
