package event

import (
	"testing"

	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/stretchr/testify/assert"
)

func TestEventsArriveNextTick(t *testing.T) {
	b := NewBus()
	var got []EntityPlaced
	Subscribe(b, func(ev EntityPlaced) { got = append(got, ev) })

	Emit(b, EntityPlaced{Entity: 7, Pos: geo.Pos(1, 2, 7)})
	assert.Equal(t, 1, Pending[EntityPlaced](b))

	b.DispatchAll()
	assert.Empty(t, got, "not visible before swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1)
	assert.Equal(t, geo.Pos(1, 2, 7), got[0].Pos)
	assert.Equal(t, 0, Pending[EntityPlaced](b))
}

func TestEmitOnNilBus(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit[EntityRemoved](nil, EntityRemoved{Entity: 1})
	})
}
