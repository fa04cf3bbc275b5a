package creature

import (
	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/geo"
)

// Wander is the idle-walk state of a monster.
type Wander struct {
	Home     geo.Position
	Radius   int
	Path     []geo.Direction // next step last
	Cooldown int             // ticks until the next step
}

// Registry owns every live creature. IDs come from the ecs pool so a
// despawned creature's stale ID never resolves again.
type Registry struct {
	world     *ecs.World
	creatures *ecs.PtrComponentStore[Creature]
	wanders   *ecs.PtrComponentStore[Wander]
}

func NewRegistry(w *ecs.World) *Registry {
	r := &Registry{
		world:     w,
		creatures: ecs.NewPtrComponentStore[Creature](),
		wanders:   ecs.NewPtrComponentStore[Wander](),
	}
	w.Registry().Register(r.creatures)
	w.Registry().Register(r.wanders)
	return r
}

// Spawn allocates a creature. It is not on the map until placed.
func (r *Registry) Spawn(name string, kind Kind) *Creature {
	c := New(r.world.CreateEntity(), name, kind)
	r.creatures.Set(c.id, c)
	return c
}

// SetWander makes c roam around home.
func (r *Registry) SetWander(c *Creature, home geo.Position, radius int) {
	r.wanders.Set(c.id, &Wander{Home: home, Radius: radius})
}

func (r *Registry) Get(id ecs.EntityID) (*Creature, bool) {
	if !r.world.Alive(id) {
		return nil, false
	}
	return r.creatures.Get(id)
}

// Despawn queues c for removal at the end of the tick.
func (r *Registry) Despawn(c *Creature) {
	r.world.MarkForDestruction(c.id)
}

func (r *Registry) Len() int { return r.creatures.Len() }

func (r *Registry) Each(fn func(*Creature)) {
	r.creatures.Each(func(_ ecs.EntityID, c *Creature) { fn(c) })
}

// EachWandering visits creatures that have wander state.
func (r *Registry) EachWandering(fn func(*Creature, *Wander)) {
	ecs.Each2(r.creatures, r.wanders, func(_ ecs.EntityID, c *Creature, w *Wander) {
		fn(c, w)
	})
}
