/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// Archiver wraps a Store with lz4 framing and pushes snapshots to it off
// the tick thread, so a host can call Push every few hundred frames without
// stalling simulation on object-storage latency. Each push runs in its own
// goroutine, so the order in which snapshots reach the backend is not
// defined; the caller is never blocked on the backend write.
type Archiver struct {
	store Store

	mu    sync.Mutex
	group *errgroup.Group
	ctx   context.Context
}

// NewArchiver wraps store. ctx is the parent of the errgroup's context;
// background pushes do not check it, so cancelling it neither rejects new
// pushes nor interrupts in-flight ones.
func NewArchiver(ctx context.Context, store Store) *Archiver {
	group, gctx := errgroup.WithContext(ctx)
	return &Archiver{store: store, group: group, ctx: gctx}
}

// Push compresses a copy of raw (the exact bytes world.World.SaveTo wrote)
// and schedules the write in the background. It returns immediately; call
// Wait to observe errors.
func (a *Archiver) Push(name string, raw []byte) {
	buf := make([]byte, len(raw))
	copy(buf, raw)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.group.Go(func() error {
		var compressed bytes.Buffer
		w := lz4.NewWriter(&compressed)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("snapshot: compress %s: %w", name, err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("snapshot: close lz4 writer for %s: %w", name, err)
		}
		if err := a.store.WriteSnapshot(name, &compressed); err != nil {
			return fmt.Errorf("snapshot: push %s: %w", name, err)
		}
		return nil
	})
}

// Wait blocks until every pushed Push call has completed, and returns the
// first error encountered, if any.
func (a *Archiver) Wait() error {
	a.mu.Lock()
	group := a.group
	a.mu.Unlock()
	return group.Wait()
}

// Fetch reads back and decompresses a snapshot previously written by Push.
func (a *Archiver) Fetch(name string) ([]byte, error) {
	r, err := a.store.ReadSnapshot(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(lz4.NewReader(r))
}
