package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Deduction-Dev/composio/tools"
	"github.com/google/uuid"
)

var TimeNowFn = time.Now

type RunStats struct {
	EntityID string
	RunID    string

	Duration            time.Duration
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
}

// Scratchpad is a callback handler that records tool calls per entity run.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts recording tool calls for the entity,
// a previous run of the same entity is discarded.
func (l *Scratchpad) StartRun(entityID string) string {
	l.lock.Lock()
	defer l.lock.Unlock()

	r := &run{
		stats: RunStats{
			EntityID: entityID,
			RunID:    uuid.NewString(),
		},
		started: time.Now(),
	}
	l.runs[entityID] = r

	r.print("*** Run Started ***")
	return r.stats.RunID
}

// EndRun stops recording for the entity and returns the stats and the transcript.
func (l *Scratchpad) EndRun(entityID string) (*RunStats, []byte) {
	run := l.getRun(entityID)
	if run == nil {
		return nil, nil
	}

	stats := RunStats{
		EntityID:            run.stats.EntityID,
		RunID:               run.stats.RunID,
		Duration:            time.Since(run.started),
		ToolsCalls:          atomic.LoadUint32(&run.stats.ToolsCalls),
		ToolsCallsSucceeded: atomic.LoadUint32(&run.stats.ToolsCallsSucceeded),
		ToolsCallsFailed:    atomic.LoadUint32(&run.stats.ToolsCallsFailed),
	}

	run.print(fmt.Sprintf("Tool calls: %d, Succeeded: %d, Failed: %d",
		stats.ToolsCalls,
		stats.ToolsCallsSucceeded,
		stats.ToolsCallsFailed,
	))
	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, entityID)
	l.lock.Unlock()

	return &stats, run.w.Bytes()
}

func (l *Scratchpad) getRun(entityID string) *run {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[entityID]
}

func (l *Scratchpad) OnToolStart(_ context.Context, tool tools.ITool, entityID, input string) {
	run := l.getRun(entityID)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	run.print(tool.Name(), "*** Tool Start ***")
	run.print(tool.Name(), "Input:", input)
}

func (l *Scratchpad) OnToolEnd(_ context.Context, tool tools.ITool, entityID, input, output string) {
	run := l.getRun(entityID)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	if l.mode == ModeVerbose {
		run.print(tool.Name(), "Output:", output)
	}
	run.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(_ context.Context, tool tools.ITool, entityID, input string, err error) {
	run := l.getRun(entityID)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(tool.Name(), "*** Tool Error ***", err.Error())
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// timestamp entityID.runID entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.EntityID)
	_, _ = r.w.WriteString(".")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
