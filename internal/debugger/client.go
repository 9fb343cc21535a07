// Package debugger streams evaluation traces to an editor over Socket.IO.
package debugger

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/engine"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/loader"
	"github.com/vk/gdcore/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted to the editor.
const (
	TickEvent       = "tick"
	LoadReportEvent = "load_report"
)

// DefaultMaxEvaluations caps the evaluations buffered for one tick.
const DefaultMaxEvaluations = 1024

// EmitFunc sends one event with its payload.
type EmitFunc func(event string, args ...any)

// Evaluation is one instruction evaluated during a tick.
type Evaluation struct {
	Type     string `json:"type"`
	Kind     string `json:"kind"`
	Inverted bool   `json:"inverted,omitempty"`
	Result   bool   `json:"result"`
}

// Frame is the payload of a tick event.
type Frame struct {
	Tick        uint64       `json:"tick"`
	Evaluations []Evaluation `json:"evaluations"`
	Dropped     int          `json:"dropped,omitempty"`
}

// Options configures Connect.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds the wait for the initial connection. Zero means 15s.
	Timeout time.Duration
	// MaxEvaluations bounds the evaluations kept per tick. Zero means
	// DefaultMaxEvaluations.
	MaxEvaluations int
}

// Client is an engine.Observer forwarding every tick to the editor.
type Client struct {
	emit    EmitFunc
	closeFn func()
	logger  *slog.Logger
	max     int

	mu        sync.Mutex
	tick      uint64
	pending   []Evaluation
	dropped   int
	closeOnce sync.Once
}

var _ engine.Observer = (*Client)(nil)

// New creates a client sending through emit. closeFn, if not nil, runs once
// on Close.
func New(emit EmitFunc, closeFn func(), logger *slog.Logger, maxEvaluations int) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEvaluations <= 0 {
		maxEvaluations = DefaultMaxEvaluations
	}
	return &Client{emit: emit, closeFn: closeFn, logger: logger, max: maxEvaluations}
}

// Connect dials the editor at rawURL over websocket and waits for the
// connection to be established.
func Connect(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("component", "debugger", "url", rawURL)
	logger.Info("Connecting to debugger...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("debugger URL '%s' needs a scheme and a host", rawURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("✅ Debugger connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for debugger connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for debugger connection", timeout)
	}

	emit := func(event string, args ...any) { io.Emit(event, args...) }
	return New(emit, func() { io.Disconnect() }, logger, opts.MaxEvaluations), nil
}

// TickStarted implements engine.Observer.
func (c *Client) TickStarted(tick uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = tick
	c.pending = c.pending[:0]
	c.dropped = 0
}

// InstructionEvaluated implements engine.Observer.
func (c *Client) InstructionEvaluated(instr *events.Instruction, kind registry.Kind, result bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) >= c.max {
		c.dropped++
		return
	}
	c.pending = append(c.pending, Evaluation{
		Type:     instr.Type(),
		Kind:     kind.String(),
		Inverted: kind == registry.KindCondition && instr.IsInverted(),
		Result:   result,
	})
}

// TickFinished implements engine.Observer. It sends the tick frame.
func (c *Client) TickFinished(tick uint64) {
	c.mu.Lock()
	frame := Frame{
		Tick:        tick,
		Evaluations: make([]Evaluation, len(c.pending)),
		Dropped:     c.dropped,
	}
	copy(frame.Evaluations, c.pending)
	c.pending = c.pending[:0]
	c.dropped = 0
	c.mu.Unlock()

	if frame.Dropped > 0 {
		c.logger.Debug("Debugger frame truncated.", "tick", tick, "dropped", frame.Dropped)
	}
	c.emit(TickEvent, frame)
}

// CandidateInfo is the wire form of a loader candidate.
type CandidateInfo struct {
	Path       string `json:"path"`
	Kind       string `json:"kind"`
	Name       string `json:"name,omitempty"`
	State      string `json:"state"`
	RejectedAt string `json:"rejected_at,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SendLoadReport sends what the loader did to the editor.
func (c *Client) SendLoadReport(report *loader.Report) {
	infos := make([]CandidateInfo, 0, len(report.Candidates))
	for _, cand := range report.Candidates {
		info := CandidateInfo{
			Path:  cand.Path,
			Kind:  cand.Kind.String(),
			Name:  cand.Name,
			State: cand.State.String(),
		}
		if cand.State == loader.Rejected {
			info.RejectedAt = cand.RejectedAt.String()
			if cand.Err != nil {
				info.Error = cand.Err.Error()
			}
		}
		infos = append(infos, info)
	}
	c.emit(LoadReportEvent, infos)
}

// Close disconnects from the editor. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.closeFn != nil {
			c.closeFn()
		}
		c.logger.Info("Debugger disconnected.")
	})
	return nil
}
