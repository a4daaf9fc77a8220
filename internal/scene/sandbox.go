package scene

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/philipparndt/goslice/pkg/blade"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
)

const (
	// MinLaunchSpeed and MaxLaunchSpeed bound the upward speed of new fruit
	MinLaunchSpeed = 10.0
	MaxLaunchSpeed = 15.0
	// MaxLaunchSpin bounds the initial spin of new fruit, radians per second
	MaxLaunchSpin = 3.0
	// DefaultSpawnInterval is the time between two fruit, in seconds
	DefaultSpawnInterval = 1.2
	// BladeRadius is how close the blade tip has to come to a fruit's bounds
	BladeRadius = 0.15
	// SpawnHeight is where fruit start, below the visible area
	SpawnHeight = -4.0
	// SpawnWidth is the horizontal range fruit spawn in, centered on zero
	SpawnWidth = 8.0
)

// SliceEvent reports one fruit cut by the blade
type SliceEvent struct {
	Source ID
	Name   string
	Result *slicer.Result
	Pieces []*Entity
}

// Sandbox throws fruit into the air and cuts them with a blade. It ties a
// Registry, a blade tracker and a slicer together; rendering and input are
// left to the caller.
type Sandbox struct {
	Registry *Registry
	Blade    *blade.Tracker
	Slicer   *slicer.Slicer

	SpawnInterval float64
	Score         int

	templates  map[string]*slicer.Object
	kinds      []string
	untilSpawn float64
	logger     *slog.Logger
}

// NewSandbox creates a sandbox spawning copies of the given templates, keyed
// by kind. Templates share their meshes with every spawned copy.
func NewSandbox(s *slicer.Slicer, templates map[string]*slicer.Object, seed uint64, logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	kinds := make([]string, 0, len(templates))
	for k := range templates {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	return &Sandbox{
		Registry:      NewRegistry(seed, logger),
		Blade:         blade.NewTracker(blade.DefaultMinSpeed, logger),
		Slicer:        s,
		SpawnInterval: DefaultSpawnInterval,
		templates:     templates,
		kinds:         kinds,
		logger:        logger,
	}
}

// Spawn launches one random fruit from below
func (sb *Sandbox) Spawn() *Entity {
	if len(sb.kinds) == 0 {
		return nil
	}
	rng := sb.Registry.rng
	tmpl := sb.templates[sb.kinds[rng.IntN(len(sb.kinds))]]

	obj := *tmpl
	obj.Transform = geometry.IdentityTransform()
	obj.Transform.Position = geometry.NewVector3((rng.Float64()-0.5)*SpawnWidth, SpawnHeight, 0)

	e := sb.Registry.Add(&obj)
	speed := MinLaunchSpeed + rng.Float64()*(MaxLaunchSpeed-MinLaunchSpeed)
	sb.Registry.launch(e, speed, MaxLaunchSpin)
	return e
}

// hit reports whether the blade tip touches the entity
func hit(tip geometry.Vector3, e *Entity) bool {
	bounds := blade.WorldBounds(e.Object)
	if bounds.IsEmpty() {
		return false
	}
	return bounds.ClosestPoint(tip).Distance(tip) <= BladeRadius
}

// Update advances the sandbox by dt seconds. pose is the blade pose this
// frame and cutting tells whether the blade is drawn. It returns the cuts
// made and the entities despawned this frame.
func (sb *Sandbox) Update(dt float64, pose geometry.Transform, cutting bool) ([]SliceEvent, []ID) {
	if cutting {
		sb.Blade.Update(pose, dt)
	} else {
		sb.Blade.Reset()
	}

	if sb.SpawnInterval > 0 {
		sb.untilSpawn -= dt
		for sb.untilSpawn <= 0 {
			sb.Spawn()
			sb.untilSpawn += sb.SpawnInterval
		}
	}

	var events []SliceEvent
	if cutting && sb.Blade.Fast() {
		for _, e := range sb.Registry.Entities() {
			if e.Piece || !blade.Sliceable(e.Object) || !hit(pose.Position, e) {
				continue
			}
			ev, err := sb.cut(e)
			if err != nil {
				if !errors.Is(err, blade.ErrTooSlow) {
					sb.logger.Warn("cut failed", "name", e.Object.Name, "err", err)
				}
				continue
			}
			if ev != nil {
				events = append(events, *ev)
			}
		}
	}

	return events, sb.Registry.Tick(dt)
}

func (sb *Sandbox) cut(e *Entity) (*SliceEvent, error) {
	res, err := sb.Blade.Cut(sb.Slicer, e.Object)
	if err != nil {
		return nil, err
	}
	if !res.Cut() {
		return nil, nil
	}
	pieces, err := sb.Registry.Replace(e.ID, res.Pieces())
	if err != nil {
		return nil, err
	}
	sb.Score++
	return &SliceEvent{Source: e.ID, Name: e.Object.Name, Result: res, Pieces: pieces}, nil
}
