package debugger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/loader"
	"github.com/vk/gdcore/internal/registry"
)

type emitted struct {
	event string
	args  []any
}

type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) emit(event string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{event: event, args: args})
}

func TestClient_EmitsOneFramePerTick(t *testing.T) {
	// --- Arrange ---
	rec := &recorder{}
	c := New(rec.emit, nil, nil, 0)
	cond := events.NewInstruction("VarScene", nil, true)
	act := events.NewInstruction("ShowLayer", nil, true)

	// --- Act ---
	c.TickStarted(3)
	c.InstructionEvaluated(cond, registry.KindCondition, false)
	c.InstructionEvaluated(act, registry.KindAction, true)
	c.TickFinished(3)
	c.TickStarted(4)
	c.TickFinished(4)

	// --- Assert ---
	require.Len(t, rec.events, 2)
	assert.Equal(t, TickEvent, rec.events[0].event)
	assert.Equal(t, Frame{
		Tick: 3,
		Evaluations: []Evaluation{
			{Type: "VarScene", Kind: "condition", Inverted: true, Result: false},
			{Type: "ShowLayer", Kind: "action", Result: true},
		},
	}, rec.events[0].args[0])
	assert.Equal(t, Frame{Tick: 4, Evaluations: []Evaluation{}}, rec.events[1].args[0])
}

func TestClient_TruncatesLongTicks(t *testing.T) {
	// --- Arrange ---
	rec := &recorder{}
	c := New(rec.emit, nil, nil, 2)
	instr := events.NewInstruction("Noop", nil, false)

	// --- Act ---
	c.TickStarted(1)
	for range 5 {
		c.InstructionEvaluated(instr, registry.KindAction, true)
	}
	c.TickFinished(1)

	// --- Assert ---
	frame := rec.events[0].args[0].(Frame)
	assert.Len(t, frame.Evaluations, 2)
	assert.Equal(t, 3, frame.Dropped)
}

func TestClient_SendLoadReport(t *testing.T) {
	// --- Arrange ---
	rec := &recorder{}
	c := New(rec.emit, nil, nil, 0)
	report := &loader.Report{Candidates: []*loader.Candidate{
		{Path: "Cpp/libGDCpp.so", Kind: loader.PlatformLibrary, Name: "Cpp", State: loader.Registered},
		{Path: "Js/libGDJS.so", Kind: loader.PlatformLibrary, State: loader.Rejected, RejectedAt: loader.Opened, Err: dynlib.ErrNotFound},
	}}

	// --- Act ---
	c.SendLoadReport(report)

	// --- Assert ---
	require.Len(t, rec.events, 1)
	assert.Equal(t, LoadReportEvent, rec.events[0].event)
	assert.Equal(t, []CandidateInfo{
		{Path: "Cpp/libGDCpp.so", Kind: "platform", Name: "Cpp", State: "registered"},
		{Path: "Js/libGDJS.so", Kind: "platform", State: "rejected", RejectedAt: "opened", Error: dynlib.ErrNotFound.Error()},
	}, rec.events[0].args[0])
}

func TestClient_CloseRunsOnce(t *testing.T) {
	closed := 0
	c := New(func(string, ...any) {}, func() { closed++ }, nil, 0)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, closed)
}

func TestConnect_Failures(t *testing.T) {
	t.Run("invalid URL", func(t *testing.T) {
		_, err := Connect(context.Background(), "not a url", Options{})
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		_, err := Connect(ctx, "http://127.0.0.1:1/socket.io/", Options{Timeout: time.Second})

		assert.Error(t, err)
	})
}
