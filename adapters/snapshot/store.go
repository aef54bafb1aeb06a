// Package snapshot persists the unified result set of a batch run so an
// expensive batch is never recomputed for parameters it already covered.
// A snapshot is keyed by the full parameter set that produced it; anything
// else is a mismatch and forces recomputation.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"simbench/domain/core"
	"simbench/domain/study"
)

// Key identifies the exact batch a snapshot covers.
type Key struct {
	Replications       int       `json:"n_replications"`
	SampleSizes        []int     `json:"sample_sizes"`
	Seed               uint64    `json:"seed"`
	CatalogFingerprint core.Hash `json:"catalog_fingerprint"`
}

// KeyFor builds the snapshot key for a parameter set. The catalog enters
// via a fingerprint of its canonical JSON form so any parameter edit,
// however small, produces a different key.
func KeyFor(replications int, sampleSizes []int, seed uint64, catalog study.Catalog) (Key, error) {
	fp, err := fingerprint(catalog)
	if err != nil {
		return Key{}, err
	}
	sizes := append([]int(nil), sampleSizes...)
	return Key{
		Replications:       replications,
		SampleSizes:        sizes,
		Seed:               seed,
		CatalogFingerprint: fp,
	}, nil
}

func fingerprint(catalog study.Catalog) (core.Hash, error) {
	// Map keys marshal in sorted order, so this is canonical.
	data, err := json.Marshal(catalog)
	if err != nil {
		return "", fmt.Errorf("fingerprint catalog: %w", err)
	}
	return core.NewHash(data), nil
}

func (k Key) String() string {
	return fmt.Sprintf("reps=%d sizes=%v seed=%d catalog=%.12s",
		k.Replications, k.SampleSizes, k.Seed, k.CatalogFingerprint)
}

func (k Key) equal(o Key) bool {
	if k.Replications != o.Replications || k.Seed != o.Seed || !k.CatalogFingerprint.Equals(o.CatalogFingerprint) {
		return false
	}
	if len(k.SampleSizes) != len(o.SampleSizes) {
		return false
	}
	for i := range k.SampleSizes {
		if k.SampleSizes[i] != o.SampleSizes[i] {
			return false
		}
	}
	return true
}

// Snapshot is the persisted form of a run: key, unified result set, and
// the degenerate-cell census. JSON keeps float64 round-trips lossless.
type Snapshot struct {
	Key        Key                       `json:"key"`
	RunID      core.RunID                `json:"run_id"`
	CreatedAt  time.Time                 `json:"created_at"`
	Records    []study.ReplicationRecord `json:"records"`
	Degenerate []study.DegenerateCell    `json:"degenerate,omitempty"`
}

// Store reads and writes snapshots under a directory, one file per key.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(key Key) string {
	sum := core.NewHash([]byte(fmt.Sprintf("%d|%v|%d|%s",
		key.Replications, key.SampleSizes, key.Seed, key.CatalogFingerprint)))
	return filepath.Join(s.dir, fmt.Sprintf("run-%.16s.json", sum))
}

// Save writes the snapshot atomically (temp file + rename).
func (s *Store) Save(snap *Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	target := s.path(snap.Key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot for key, os.ErrNotExist when none was saved,
// or a cache-mismatch error when the stored key disagrees with the
// requested one (corrupt or hand-edited file). A mismatch must force
// recomputation; it never silently serves the stored records.
func (s *Store) Load(key Key) (*Snapshot, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if !snap.Key.equal(key) {
		return nil, core.NewCacheMismatchError(key.String(), snap.Key.String())
	}
	return &snap, nil
}
