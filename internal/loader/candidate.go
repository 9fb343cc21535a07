package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/gdcore/internal/ctxlog"
)

// State is the stage a candidate library has reached.
type State int

const (
	Discovered State = iota
	Opened
	Validated
	Instantiated
	Registered
	Rejected
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Opened:
		return "opened"
	case Validated:
		return "validated"
	case Instantiated:
		return "instantiated"
	case Registered:
		return "registered"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Kind tells platform libraries and extension libraries apart.
type Kind int

const (
	PlatformLibrary Kind = iota + 1
	ExtensionLibrary
)

func (k Kind) String() string {
	switch k {
	case PlatformLibrary:
		return "platform"
	case ExtensionLibrary:
		return "extension"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Candidate tracks one library through loading.
type Candidate struct {
	Path string
	Kind Kind
	// Name is the platform or extension name, known once instantiated.
	Name  string
	State State
	// RejectedAt is the stage that failed, set when State is Rejected.
	RejectedAt State
	Err        error
}

func newCandidate(path string, kind Kind) *Candidate {
	return &Candidate{Path: path, Kind: kind, State: Discovered}
}

func (c *Candidate) advance(s State) {
	c.State = s
}

func (c *Candidate) reject(at State, err error) {
	c.State = Rejected
	c.RejectedAt = at
	c.Err = err
}

// LogValue implements slog.LogValuer.
func (c *Candidate) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("path", c.Path),
		slog.String("kind", c.Kind.String()),
		slog.String("state", c.State.String()),
	}
	if c.Name != "" {
		attrs = append(attrs, slog.String("name", c.Name))
	}
	if c.State == Rejected {
		attrs = append(attrs, slog.String("rejected_at", c.RejectedAt.String()), slog.Any("error", c.Err))
	}
	return slog.GroupValue(attrs...)
}

// Report lists every candidate seen by a load.
type Report struct {
	Candidates []*Candidate
}

// Registered returns the candidates that contribute to the dispatch table.
func (r *Report) Registered() []*Candidate {
	return r.filter(func(c *Candidate) bool { return c.State == Registered })
}

// Rejected returns the candidates that failed.
func (r *Report) Rejected() []*Candidate {
	return r.filter(func(c *Candidate) bool { return c.State == Rejected })
}

func (r *Report) filter(keep func(*Candidate) bool) []*Candidate {
	var out []*Candidate
	for _, c := range r.Candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Reporter is told about every rejected candidate. It is where load failures
// become visible to the user; none of them stop loading.
type Reporter interface {
	ReportFailure(c *Candidate)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(c *Candidate)

// ReportFailure implements Reporter.
func (f ReporterFunc) ReportFailure(c *Candidate) { f(c) }

// LogReporter writes one warning per rejected candidate. A nil Logger means
// slog.Default.
type LogReporter struct {
	Logger *slog.Logger
}

// ReportFailure implements Reporter.
func (r LogReporter) ReportFailure(c *Candidate) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("Unable to load library, skipping it.", "candidate", c)
}

// report hands c to r. Without a reporter the failure is logged through the
// logger carried by ctx.
func report(ctx context.Context, r Reporter, c *Candidate) {
	if r == nil {
		r = LogReporter{Logger: ctxlog.FromContext(ctx)}
	}
	r.ReportFailure(c)
}
