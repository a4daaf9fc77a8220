// Package scene keeps track of live objects between frames: fruit in flight
// and the pieces they were cut into. Pieces fly apart along their impulse
// and despawn after a fixed number of ticks.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
)

const (
	// DefaultLifetime is how many ticks a piece lives, two seconds at 60 Hz
	DefaultLifetime = 120
	// SliceImpulse is the speed a piece gains along its impulse direction
	SliceImpulse = 2.0
	// GravityScale damps standard gravity for floatier fruit
	GravityScale = 0.8
	// DefaultKillY is the height below which anything despawns
	DefaultKillY = -10.0
)

// ErrUnknownEntity is returned for IDs that are not (or no longer) registered
var ErrUnknownEntity = errors.New("unknown entity")

// ID identifies an entity for as long as it is registered
type ID uint64

// Entity is a live object with simple ballistic motion
type Entity struct {
	ID     ID
	Object *slicer.Object
	// Velocity in world units per second
	Velocity geometry.Vector3
	// Spin is the angular velocity, radians per second around its direction
	Spin geometry.Vector3
	// Lifetime counts down one per tick; zero means the entity lives until it
	// falls below the kill height
	Lifetime int
	Collider slicer.Collider
	Piece    bool
}

// Registry owns all live entities. It is not safe for concurrent use; the
// frame loop that ticks it is its only user.
type Registry struct {
	Gravity geometry.Vector3
	KillY   float64

	entities map[ID]*Entity
	next     ID
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. The seed drives piece spin.
func NewRegistry(seed uint64, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		Gravity:  geometry.NewVector3(0, -9.81*GravityScale, 0),
		KillY:    DefaultKillY,
		entities: make(map[ID]*Entity),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:   logger,
	}
}

// Add registers an object at rest and returns its entity
func (r *Registry) Add(obj *slicer.Object) *Entity {
	r.next++
	e := &Entity{ID: r.next, Object: obj}
	if obj.Mesh != nil {
		e.Collider = slicer.ChooseCollider(obj.Mesh.BoundingBox())
	}
	r.entities[e.ID] = e
	r.logger.Debug("spawned", "id", e.ID, "name", obj.Name)
	return e
}

// Launch gives an entity an upward speed and a random spin
func (r *Registry) Launch(id ID, speed, maxSpin float64) error {
	e, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	r.launch(e, speed, maxSpin)
	return nil
}

func (r *Registry) launch(e *Entity, speed, maxSpin float64) {
	e.Velocity = geometry.NewVector3(0, speed, 0)
	e.Spin = r.randomSpin(maxSpin)
}

func (r *Registry) randomSpin(max float64) geometry.Vector3 {
	if max <= 0 {
		return geometry.Vector3{}
	}
	return geometry.NewVector3(
		(r.rng.Float64()*2-1)*max,
		(r.rng.Float64()*2-1)*max,
		(r.rng.Float64()*2-1)*max,
	)
}

// Get returns the entity with the given ID
func (r *Registry) Get(id ID) (*Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Remove unregisters an entity
func (r *Registry) Remove(id ID) bool {
	if _, ok := r.entities[id]; !ok {
		return false
	}
	delete(r.entities, id)
	return true
}

// Len returns the number of live entities
func (r *Registry) Len() int {
	return len(r.entities)
}

// Entities returns the live entities ordered by ID
func (r *Registry) Entities() []*Entity {
	list := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Replace retires the source entity and registers the pieces cut from it.
// Pieces inherit the source velocity, get pushed along their impulse and
// start their despawn countdown.
func (r *Registry) Replace(id ID, pieces []*slicer.Piece) ([]*Entity, error) {
	src, ok := r.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	delete(r.entities, id)

	added := make([]*Entity, 0, len(pieces))
	for _, p := range pieces {
		r.next++
		e := &Entity{
			ID:       r.next,
			Object:   p.Object(),
			Velocity: src.Velocity.Add(p.Impulse.Normalize().Mul(SliceImpulse)),
			Spin:     src.Spin.Add(r.randomSpin(1)),
			Lifetime: DefaultLifetime,
			Collider: p.Collider,
			Piece:    true,
		}
		r.entities[e.ID] = e
		added = append(added, e)
	}
	r.logger.Debug("replaced with pieces", "id", id, "name", src.Object.Name, "pieces", len(added))
	return added, nil
}

// Tick moves every object in place by dt seconds, counts down lifetimes
// and returns the IDs despawned this tick in ascending order.
func (r *Registry) Tick(dt float64) []ID {
	var gone []ID
	for id, e := range r.entities {
		r.integrate(e, dt)

		expired := false
		if e.Lifetime > 0 {
			e.Lifetime--
			expired = e.Lifetime == 0
		}
		if expired || e.Object.Transform.Position.Y < r.KillY {
			delete(r.entities, id)
			gone = append(gone, id)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i] < gone[j] })
	return gone
}

func (r *Registry) integrate(e *Entity, dt float64) {
	if dt <= 0 {
		return
	}
	e.Velocity = e.Velocity.Add(r.Gravity.Mul(dt))
	t := e.Object.Transform
	t.Position = t.Position.Add(e.Velocity.Mul(dt))

	if w := e.Spin.Length(); w > 0 {
		axis := e.Spin.Mul(1 / w)
		step := mgl64.QuatRotate(w*dt, mgl64.Vec3{axis.X, axis.Y, axis.Z})
		rot := t.Rotation
		if rot.W == 0 && rot.V.Len() == 0 {
			rot = mgl64.QuatIdent()
		}
		t.Rotation = step.Mul(rot).Normalize()
	}
	e.Object.Transform = t
}
