package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitterProgressIsMonotonic(t *testing.T) {
	e := NewEmitter()

	var seen []int
	e.Subscribe(SinkFunc(func(ev Event) {
		if ev.Type == EventTypeProgress {
			seen = append(seen, ev.Percent)
		}
	}))

	e.EmitProgress("s1", 10)
	e.EmitProgress("s1", 5)
	e.EmitProgress("s1", 10)
	e.EmitProgress("s1", 40)
	e.EmitProgress("s1", 140)

	assert.Equal(t, []int{10, 40, 100}, seen)
	assert.Equal(t, 100, e.Progress("s1"))
}

func TestEmitterTracksScansIndependently(t *testing.T) {
	e := NewEmitter()

	e.EmitProgress("s1", 100)
	e.EmitLog("s1", "done")

	var seen []int
	e.Subscribe(SinkFunc(func(ev Event) {
		if ev.Type == EventTypeProgress && ev.ScanID == "s2" {
			seen = append(seen, ev.Percent)
		}
	}))

	e.EmitProgress("s2", 10)
	e.EmitProgress("s2", 40)
	e.EmitLog("s2", "starting")

	assert.Equal(t, []int{10, 40}, seen)
	assert.Equal(t, 100, e.Progress("s1"))
	assert.Equal(t, 40, e.Progress("s2"))
	assert.Equal(t, []string{"done"}, e.Logs("s1"))
	assert.Equal(t, []string{"starting"}, e.Logs("s2"))
}

func TestEmitterLogIsAppendOnly(t *testing.T) {
	e := NewEmitter()
	e.EmitLog("s1", "first")
	e.EmitLog("s1", "second")

	logs := e.Logs("s1")
	assert.Equal(t, []string{"first", "second"}, logs)

	logs[0] = "mutated"
	assert.Equal(t, []string{"first", "second"}, e.Logs("s1"))
}

func TestEmitterFansOutToAllSinks(t *testing.T) {
	e := NewEmitter()
	var a, b int
	e.Subscribe(SinkFunc(func(Event) { a++ }))
	e.Subscribe(SinkFunc(func(Event) { b++ }))

	e.EmitLog("s1", "stage")
	e.EmitProgress("s1", 50)

	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
}
