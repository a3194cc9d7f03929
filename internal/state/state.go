package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/siteloom/internal/project"
)

// DefaultDir is the state directory used when none is configured.
const DefaultDir = ".siteloom"

const (
	indexFile    = "history.json"
	snapshotDir  = "snapshots"
	MaxSnapshots = 50
)

// ErrNoSnapshots is returned by Pop and Undo on an empty history.
var ErrNoSnapshots = errors.New("no snapshots to restore")

// Snapshot describes one saved copy of a project file.
type Snapshot struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ProjectPath string    `json:"project_path"`
	Reason      string    `json:"reason"`
	File        string    `json:"file"`
}

// Store is the on-disk undo stack. Newest snapshots are at the end.
type Store struct {
	Snapshots []Snapshot `json:"snapshots"`

	mu  sync.Mutex
	dir string
}

// Open loads the store in dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(filepath.Join(dir, snapshotDir), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	s := &Store{dir: dir}
	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read history: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return s, nil
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, indexFile), data, 0644)
}

// Push stores a deep copy of p as the newest snapshot of projectPath.
// The oldest snapshots are dropped beyond MaxSnapshots.
func (s *Store) Push(projectPath, reason string, p *project.Project) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		ProjectPath: projectPath,
		Reason:      reason,
	}
	snap.File = filepath.Join(snapshotDir, snap.ID+".yaml")
	if err := project.Save(filepath.Join(s.dir, snap.File), p.Clone()); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	s.Snapshots = append(s.Snapshots, snap)
	for len(s.Snapshots) > MaxSnapshots {
		_ = os.Remove(filepath.Join(s.dir, s.Snapshots[0].File))
		s.Snapshots = s.Snapshots[1:]
	}
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Pop removes the newest snapshot and returns its project.
func (s *Store) Pop() (*Snapshot, *project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, p, err := s.newestLocked()
	if err != nil {
		return nil, nil, err
	}
	if err := s.dropNewestLocked(); err != nil {
		return nil, nil, err
	}
	return snap, p, nil
}

// Undo restores the newest snapshot over its project file. The snapshot
// stays on the stack when the restore fails.
func (s *Store) Undo() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, p, err := s.newestLocked()
	if err != nil {
		return nil, err
	}
	if err := project.Save(snap.ProjectPath, p); err != nil {
		return nil, fmt.Errorf("restore %s: %w", snap.ProjectPath, err)
	}
	if err := s.dropNewestLocked(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) newestLocked() (*Snapshot, *project.Project, error) {
	if len(s.Snapshots) == 0 {
		return nil, nil, ErrNoSnapshots
	}
	snap := s.Snapshots[len(s.Snapshots)-1]
	p, err := project.Load(filepath.Join(s.dir, snap.File))
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot %s: %w", snap.ID, err)
	}
	return &snap, p, nil
}

func (s *Store) dropNewestLocked() error {
	snap := s.Snapshots[len(s.Snapshots)-1]
	s.Snapshots = s.Snapshots[:len(s.Snapshots)-1]
	if err := s.saveLocked(); err != nil {
		s.Snapshots = append(s.Snapshots, snap)
		return err
	}
	_ = os.Remove(filepath.Join(s.dir, snap.File))
	return nil
}

// List returns the snapshots, newest first.
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Snapshot, len(s.Snapshots))
	for i, snap := range s.Snapshots {
		out[len(out)-1-i] = snap
	}
	return out
}

// Clean removes the state directory.
func (s *Store) Clean() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Snapshots = nil
	return os.RemoveAll(s.dir)
}
