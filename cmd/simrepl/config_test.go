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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldglass/simcore/fx"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simrepl.json")
	body := `{"AttackDamage": 99, "UnitSpeedPerTick": 2}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.AttackDamage != 99 {
		t.Fatalf("AttackDamage = %d, want 99", cfg.AttackDamage)
	}
	if cfg.unitSpeed() != fx.FromFloatLiteral(2) {
		t.Fatalf("unitSpeed = %v, want %v", cfg.unitSpeed(), fx.FromFloatLiteral(2))
	}
	// Fields the file didn't mention keep their defaults.
	if cfg.World.UnitCapacity != defaultConfig().World.UnitCapacity {
		t.Fatalf("World.UnitCapacity = %q, want default %q", cfg.World.UnitCapacity, defaultConfig().World.UnitCapacity)
	}
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.json")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simrepl.json")
	if err := os.WriteFile(path, []byte(`{"AttackDamage": 1}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan Config, 1)
	watcher, err := watchConfig(path, func(c Config) { reloaded <- c })
	if err != nil {
		t.Fatalf("watchConfig: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(path, []byte(`{"AttackDamage": 42}`), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case c := <-reloaded:
		if c.AttackDamage != 42 {
			t.Fatalf("reloaded AttackDamage = %d, want 42", c.AttackDamage)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("watchConfig did not observe the rewrite in time")
	}
}
