package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	phase Phase
	name  string
	log   *[]string
}

func (r recorder) Phase() Phase         { return r.phase }
func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseUpdate, "wander", &log})
	r.Register(recorder{PhasePreUpdate, "cache", &log})
	r.Register(recorder{PhaseUpdate, "second", &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"cache", "wander", "second", "cleanup"}, log)
	assert.EqualValues(t, 1, r.Ticks())

	log = nil
	r.TickPhase(PhaseUpdate, time.Millisecond)
	assert.Equal(t, []string{"wander", "second"}, log)
}

func TestRunnerObservesPhases(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseUpdate, "wander", &log})
	r.Register(recorder{PhaseUpdate, "second", &log})

	clock := time.Unix(0, 0)
	r.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	type timing struct {
		phase string
		took  time.Duration
	}
	var got []timing
	r.Observe(func(p Phase, took time.Duration) { got = append(got, timing{p.String(), took}) })

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"wander", "second", "cleanup"}, log)
	assert.Equal(t, []timing{{"update", time.Millisecond}, {"cleanup", time.Millisecond}}, got)
	assert.EqualValues(t, 1, r.Ticks())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "input", PhaseInput.String())
	assert.Equal(t, "persist", PhasePersist.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
