// Copyright 2026, Square, Inc.

// Package snapshot freezes configs to files so the master can respawn a
// worker with exactly the config the previous worker ran with, even if the
// settings file changed in the meantime.
package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/orcaman/concurrent-map"
	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"

	"github.com/square/kuyruk/config"
)

var ErrNotFound = errors.New("snapshot not found")

const ext = ".star"

// Store keeps frozen configs in a directory. It is safe for concurrent use.
type Store struct {
	dir   string
	snaps cmap.ConcurrentMap // id => file path
}

// NewStore returns a Store that writes snapshots to dir. The directory is
// created on the first Freeze if it doesn't exist.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		snaps: cmap.New(),
	}
}

// Freeze exports cfg to a new snapshot file and returns its id.
func (s *Store) Freeze(cfg *config.Config) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}
	id := xid.New().String()
	path := filepath.Join(s.dir, id+ext)
	if err := cfg.Export(path); err != nil {
		return "", err
	}
	s.snaps.Set(id, path)
	log.WithField("snapshot", id).Debugf("config frozen to %s", path)
	return id, nil
}

// Path returns the file of a snapshot, which can be handed to a new worker
// process as its settings file.
func (s *Store) Path(id string) (string, error) {
	v, ok := s.snaps.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	return v.(string), nil
}

// Thaw loads a snapshot into a new Config.
func (s *Store) Thaw(id string) (*config.Config, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	cfg := config.New()
	if err := cfg.FromFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Remove deletes a snapshot and its file. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) error {
	path, err := s.Path(id)
	if err != nil {
		return nil
	}
	s.snaps.Remove(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IDs returns the ids of all snapshots, oldest first.
func (s *Store) IDs() []string {
	ids := s.snaps.Keys()
	sort.Strings(ids) // xids sort by creation time
	return ids
}
