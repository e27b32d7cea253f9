// Package storage persists inference runs: one directory per run holding
// metadata.json and chain.csv.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kmadler/bayesode/internal/chain"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Backend    string    `json:"backend"`
	Integrator string    `json:"integrator"`
	Samples    int       `json:"samples"`
	Warmup     int       `json:"warmup"`
	Seed       uint64    `json:"seed"`
	Sigma      float64   `json:"sigma"`
	TrueParams []float64 `json:"true_params,omitempty"`
	ParamNames []string  `json:"param_names"`
	AcceptRate float64   `json:"accept_rate"`
	ElapsedSec float64   `json:"elapsed_sec"`
}

// Save writes the run and returns its id.
func (s *Store) Save(meta RunMetadata, ch *chain.Chain) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", meta.Model, meta.Backend, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.ParamNames = ch.Names
	meta.Samples = ch.Len()
	meta.AcceptRate = ch.AcceptRate()
	meta.ElapsedSec = ch.Elapsed.Seconds()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	chainFile, err := os.Create(filepath.Join(runDir, "chain.csv"))
	if err != nil {
		return "", err
	}
	defer chainFile.Close()

	if err := ch.WriteCSV(chainFile); err != nil {
		return "", err
	}
	return runID, nil
}

// Load reads a run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadChain reads a run's posterior chain.
func (s *Store) LoadChain(runID string) (*chain.Chain, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "chain.csv"))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	defer f.Close()

	ch, err := chain.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	ch.Backend = meta.Backend
	ch.Elapsed = time.Duration(meta.ElapsedSec * float64(time.Second))
	return ch, nil
}

// List returns metadata for all stored runs, newest first.
func (s *Store) List() ([]*RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var runs []*RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue // skip partial or foreign directories
		}
		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}
