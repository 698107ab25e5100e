// Package smartdecoder selects a tile decoder backend by priority.
package smartdecoder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/user/heiftile/pkg/ports"
)

// Auto lets the highest priority backend win.
const Auto = "auto"

var (
	// ErrUnsupportedCodec is returned when no backend accepts the format.
	ErrUnsupportedCodec = errors.New("smartdecoder: unsupported codec")
	// ErrNoDecoderAvailable is returned when a requested backend cannot decode the format.
	ErrNoDecoderAvailable = errors.New("smartdecoder: no decoder available")
	// ErrUnknownBackend is returned when a requested backend is not registered.
	ErrUnknownBackend = errors.New("smartdecoder: unknown backend")
)

// Candidate is a backend with the priority it reported for a format.
type Candidate struct {
	Backend  ports.DecoderBackend
	Priority int
}

// Options configures backend selection.
type Options struct {
	// Backend is a backend ID, or Auto.
	Backend string
}

// Selector picks among registered backends.
type Selector struct {
	backends []ports.DecoderBackend
	opts     Options
	logger   ports.Logger
}

// New creates a selector over backends, in registration order.
func New(backends []ports.DecoderBackend, opts Options, logger ports.Logger) *Selector {
	if opts.Backend == "" {
		opts.Backend = Auto
	}
	return &Selector{
		backends: backends,
		opts:     opts,
		logger:   logger.WithComponent("smartdecoder"),
	}
}

// Candidates returns every backend with its priority for format, highest
// first. Ties keep registration order.
func (s *Selector) Candidates(format ports.CompressionFormat) []Candidate {
	out := make([]Candidate, 0, len(s.backends))
	for _, b := range s.backends {
		out = append(out, Candidate{Backend: b, Priority: b.SupportsFormat(format)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Select returns the backend to decode format with.
//
// The selection flow:
//   - A named backend is used if it reports a non-zero priority
//   - Auto uses the highest non-zero priority
func (s *Selector) Select(format ports.CompressionFormat) (ports.DecoderBackend, error) {
	if s.opts.Backend != Auto {
		for _, b := range s.backends {
			if b.ID() != s.opts.Backend {
				continue
			}
			if b.SupportsFormat(format) == 0 {
				return nil, fmt.Errorf("%w: %s cannot decode %s", ErrNoDecoderAvailable, b.ID(), format)
			}
			s.logger.Debug("Using decoder %s for %s", b.Name(), format)
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, s.opts.Backend)
	}

	for _, c := range s.Candidates(format) {
		if c.Priority > 0 {
			s.logger.Debug("Using decoder %s for %s", c.Backend.Name(), format)
			return c.Backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, format)
}

// Backends returns the registered backends.
func (s *Selector) Backends() []ports.DecoderBackend {
	return s.backends
}
