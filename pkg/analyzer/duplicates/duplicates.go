// Package duplicates flags tiny files whose content is byte-identical to a
// file seen earlier in the same scan.
package duplicates

import (
	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/sweepstacx/pkg/models"
)

// DefaultMaxBytes is the largest file size considered tiny.
const DefaultMaxBytes = 200

// Detector remembers the first file seen for each tiny-content fingerprint.
// It is not safe for concurrent use.
type Detector struct {
	maxBytes int
	seen     map[uint64]string
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithMaxBytes sets the tiny-file size limit. Values <= 0 keep the default.
func WithMaxBytes(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// New creates a detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		maxBytes: DefaultMaxBytes,
		seen:     make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fingerprint returns the content hash used for comparison.
func Fingerprint(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Observe records rel and returns a duplicate_block issue when its content
// matches a previously observed tiny file. Empty files and files over the
// size limit are ignored.
func (d *Detector) Observe(rel string, content []byte) (models.Issue, bool) {
	if len(content) == 0 || len(content) > d.maxBytes {
		return models.Issue{}, false
	}
	fp := Fingerprint(content)
	first, ok := d.seen[fp]
	if !ok {
		d.seen[fp] = rel
		return models.Issue{}, false
	}
	return models.Issue{
		Type:        models.IssueDuplicateBlock,
		File:        rel,
		Line:        1,
		DuplicateOf: first,
		Suggestion:  "Identical to " + first,
	}, true
}
