// Package state persists the last known signature per target as one
// human-diffable YAML record per slug, plus a consolidated summary file
// rebuilt from scratch every run.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"pagewatch/internal/extract"
	logx "pagewatch/pkg/logx"
)

const summaryFileName = "summary.yaml"

type Store struct {
	dir string
	log logx.Logger

	now func() time.Time
}

func NewStore(dir string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{dir: dir, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Dir returns the state directory the store persists into.
func (s *Store) Dir() string { return s.dir }

func (s *Store) recordPath(t Target) string {
	return filepath.Join(s.dir, t.Slug+".yaml")
}

// Read returns the last persisted signature for the target, or nil when
// none exists. Unreadable or corrupt records are treated as absent so a
// damaged record re-bootstraps instead of wedging the target.
func (s *Store) Read(t Target) *extract.Signature {
	b, err := os.ReadFile(s.recordPath(t))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("state record unreadable; treating as absent",
				logx.String("slug", t.Slug), logx.Err(err))
		}
		return nil
	}

	var sig extract.Signature
	if err := yaml.Unmarshal(b, &sig); err != nil {
		s.log.Warn("state record corrupt; treating as absent",
			logx.String("slug", t.Slug), logx.Err(err))
		return nil
	}
	if sig.CombinedHash == "" {
		s.log.Warn("state record incomplete; treating as absent",
			logx.String("slug", t.Slug))
		return nil
	}
	return &sig
}

// Write persists the signature with write-to-temporary-then-rename
// discipline: a crash mid-write can never corrupt the previous record.
func (s *Store) Write(t Target, sig extract.Signature) error {
	b, err := yaml.Marshal(&sig)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", t.Slug, err)
	}
	return s.atomicWrite(s.recordPath(t), b)
}

func (s *Store) atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// ---- Consolidated summary ----

type summaryEntry struct {
	Slug         string     `yaml:"slug"`
	URL          string     `yaml:"url"`
	Status       string     `yaml:"status"` // tracked | pending
	CombinedHash string     `yaml:"combined_hash,omitempty"`
	Links        int        `yaml:"links"`
	Keywords     []string   `yaml:"keywords,omitempty"`
	CapturedAt   *time.Time `yaml:"captured_at,omitempty"`
}

type summaryFile struct {
	GeneratedAt time.Time      `yaml:"generated_at"`
	Targets     []summaryEntry `yaml:"targets"`
}

// WriteSummary rebuilds the consolidated view from the per-target records
// on disk. Rebuilding from scratch each run (rather than maintaining the
// summary incrementally) eliminates drift between the summary and the
// records it reflects.
func (s *Store) WriteSummary(targets []Target) error {
	out := summaryFile{
		GeneratedAt: s.now(),
		Targets:     make([]summaryEntry, 0, len(targets)),
	}

	for _, t := range targets {
		e := summaryEntry{Slug: t.Slug, URL: t.URL, Status: "pending"}
		if sig := s.Read(t); sig != nil {
			e.Status = "tracked"
			e.CombinedHash = sig.CombinedHash
			e.Links = len(sig.Links)
			e.Keywords = sig.Keywords
			if !sig.CapturedAt.IsZero() {
				at := sig.CapturedAt
				e.CapturedAt = &at
			}
		}
		out.Targets = append(out.Targets, e)
	}

	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return s.atomicWrite(filepath.Join(s.dir, summaryFileName), b)
}
