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
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/fsnotify/fsnotify"

	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/rts"
)

// Config is simrepl's JSON-authored configuration: the world's schema
// sizing (rts.WorldConfig, fixed at construction) plus the gameplay knobs a
// running match can reload without restarting. This mirrors the split
// memcp draws between SettingsT's startup fields and the ones
// ChangeSettings mutates on a live storage.Database, narrowed to a file a
// host edits on disk instead of a script-driven setter.
type Config struct {
	World              rts.WorldConfig
	UnitSpeedPerTick   float64
	AttackDamage       int32
	ProjectileLifetime int32
}

func defaultConfig() Config {
	return Config{
		World: rts.WorldConfig{
			UnitCapacity:       "4Ki",
			ProjectileCapacity: "4Ki",
			CellSizeMeters:     8,
			GridSize:           256,
			ChunkSizeCells:     64,
			MaxChunks:          4096,
		},
		UnitSpeedPerTick:   1,
		AttackDamage:       25,
		ProjectileLifetime: 180,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("simrepl: read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("simrepl: parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) unitSpeed() fx.Fx { return fx.FromFloatLiteral(c.UnitSpeedPerTick) }

// watchConfig reloads path on every write and hands the new Config to
// onChange, the way memcp's own Settings can be changed at runtime except
// driven by a file edit instead of a scheme call. fsnotify watches path's
// directory rather than the file itself so an editor's atomic
// write-then-rename still triggers a reload.
func watchConfig(path string, onChange func(Config)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("simrepl: fsnotify: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("simrepl: watch %s: %w", dir, err)
	}
	name := filepath.Base(path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				next, err := loadConfig(path)
				if err != nil {
					fmt.Println("simrepl: config reload failed:", err)
					continue
				}
				onChange(next)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Println("simrepl: fsnotify error:", err)
			}
		}
	}()

	return watcher, nil
}
