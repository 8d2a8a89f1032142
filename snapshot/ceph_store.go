//go:build ceph

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
	"io"
	"path"
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephConfig names the RADOS cluster and pool a CephStore connects to,
// mirroring memcp's CephFactory (storage/persistence-ceph.go).
type CephConfig struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephStore persists snapshots as whole RADOS objects. Only compiled in
// with the "ceph" build tag, same as the teacher's persistence-ceph.go,
// since go-ceph links against the cluster's native client library.
type CephStore struct {
	cfg CephConfig

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

func NewCephStore(cfg CephConfig) *CephStore {
	return &CephStore{cfg: cfg}
}

func (s *CephStore) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}

	conn, err := rados.NewConnWithClusterAndUser(s.cfg.ClusterName, s.cfg.UserName)
	if err != nil {
		return err
	}
	if s.cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(s.cfg.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(s.cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}
	s.conn, s.ioctx, s.opened = conn, ioctx, true
	return nil
}

func (s *CephStore) obj(name string) string {
	pfx := strings.TrimSuffix(s.cfg.Prefix, "/")
	return path.Join(pfx, name)
}

func (s *CephStore) WriteSnapshot(name string, data io.Reader) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	return s.ioctx.WriteFull(s.obj(name), buf)
}

func (s *CephStore) ReadSnapshot(name string) (io.ReadCloser, error) {
	if err := s.ensureOpen(); err != nil {
		return ErrorReader{Err: err}, err
	}
	obj := s.obj(name)
	stat, err := s.ioctx.Stat(obj)
	if err != nil {
		return ErrorReader{Err: err}, err
	}
	buf := make([]byte, stat.Size)
	n, err := s.ioctx.Read(obj, buf, 0)
	if err != nil {
		return ErrorReader{Err: err}, err
	}
	return io.NopCloser(bytes.NewReader(buf[:n])), nil
}

func (s *CephStore) RemoveSnapshot(name string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.ioctx.Delete(s.obj(name))
}
