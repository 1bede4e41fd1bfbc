// Package cache persists the last scan result so patch and report runs can
// work from it.
package cache

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/zeebo/blake3"

	"github.com/panbanda/sweepstacx/pkg/models"
)

const (
	// ScanFile is the scan record inside the cache directory.
	ScanFile = "scan.json"
	// LastFile holds the epoch-millisecond time of the last scan.
	LastFile = ".last"

	schemaURL = "https://github.com/panbanda/sweepstacx/scan.schema.json"
)

var (
	// ErrNoScanCache is returned when no scan has been recorded yet.
	ErrNoScanCache = errors.New("no scan cache found; run `sweepstacx scan` first")
	// ErrInvalidScanCache is returned when the scan record fails validation.
	ErrInvalidScanCache = errors.New("invalid scan cache")
)

//go:embed scan.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse scan schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add scan schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Store reads and writes the scan record in one directory.
type Store struct {
	dir string
	ttl time.Duration
}

// New creates a store rooted at dir. The directory is created on the first
// Save. A ttlHours of 0 disables staleness checks.
func New(dir string, ttlHours int) *Store {
	return &Store{
		dir: dir,
		ttl: time.Duration(ttlHours) * time.Hour,
	}
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the scan record path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ScanFile)
}

// Save writes the scan record and the last-scan marker.
func (s *Store) Save(r *models.ScanResult) error {
	if err := s.Update(r); err != nil {
		return err
	}
	last := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := os.WriteFile(filepath.Join(s.dir, LastFile), []byte(last), 0644); err != nil {
		return fmt.Errorf("write last-scan marker: %w", err)
	}
	return nil
}

// Update rewrites the scan record and leaves the last-scan marker alone.
// Patch runs use it to record their artifacts.
func (s *Store) Update(r *models.ScanResult) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scan cache: %w", err)
	}
	if err := os.WriteFile(s.Path(), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write scan cache: %w", err)
	}
	return nil
}

// Load reads and validates the scan record.
func (s *Store) Load() (*models.ScanResult, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoScanCache
	}
	if err != nil {
		return nil, fmt.Errorf("read scan cache: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var r models.ScanResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScanCache, err)
	}
	if r.Files == nil {
		r.Files = make(map[string]string)
	}
	if r.Patches == nil {
		r.Patches = []models.PatchSummary{}
	}
	return &r, nil
}

// Validate checks a raw scan record against the embedded schema.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScanCache, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScanCache, err)
	}
	return nil
}

// LastScan returns the time recorded by the last Save.
func (s *Store) LastScan() (time.Time, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, LastFile))
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last-scan marker: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// IsStale reports whether r is older than the store's TTL.
func (s *Store) IsStale(r *models.ScanResult) bool {
	if s.ttl <= 0 || r.ScannedAt.IsZero() {
		return false
	}
	return time.Since(r.ScannedAt) > s.ttl
}

// HashFile computes a BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
