package streaming

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/tasks"
	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	ErrOutOfBounds = errors.New("streaming: voxel out of chunk bounds")
	ErrNotResident = errors.New("streaming: chunk not resident")
	ErrClosed      = errors.New("streaming: streamer is shut down")
)

// Options configures a Streamer.
type Options struct {
	Dims    world.Dims
	Terrain world.Terrain
	// Workers is the size of the shared generation and meshing pool.
	Workers int
	// MaxRequestsPerTick caps new jobs started per tick; 0 means no cap.
	MaxRequestsPerTick int
	Logger             *zap.Logger
	Clock              tasks.Clock
}

// Stats is the telemetry read-out of a Streamer.
type Stats struct {
	GenerationInFlight int
	MeshingInFlight    int
	GenerationLatency  time.Duration
	MeshingLatency     time.Duration
	Chunks             int
	Meshes             int
	QueuedJobs         uint64
}

// Streamer keeps the chunks around a set of viewers generated, meshed and
// handed to a RenderSink, and evicts what falls out of range. Caches are
// touched only under mu; workers hand results back through the task tables.
type Streamer struct {
	dims        world.Dims
	gen         *world.Generator
	pool        *tasks.Pool
	chunkTasks  *tasks.Table[*world.Chunk]
	meshTasks   *tasks.Table[meshing.Result]
	sink        RenderSink
	log         *zap.Logger
	maxRequests int

	mu      sync.Mutex
	chunks  *world.ChunkStore
	meshes  map[world.ChunkCoord]*meshing.Mesh
	proxies map[world.ChunkCoord]struct{}
	closed  bool
}

// New creates a streamer that reports meshes to sink.
func New(opts Options, sink RenderSink) (*Streamer, error) {
	if err := opts.Dims.Validate(); err != nil {
		return nil, fmt.Errorf("streaming: %w", err)
	}
	if opts.Terrain == nil {
		return nil, errors.New("streaming: terrain is required")
	}
	if sink == nil {
		return nil, errors.New("streaming: render sink is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	pool := tasks.NewPool(opts.Workers)
	tableOpts := []tasks.Option{tasks.WithLogger(log)}
	if opts.Clock != nil {
		tableOpts = append(tableOpts, tasks.WithClock(opts.Clock))
	}

	s := &Streamer{
		dims:        opts.Dims,
		gen:         world.NewGenerator(opts.Terrain, opts.Dims),
		pool:        pool,
		chunkTasks:  tasks.NewTable[*world.Chunk]("generate", pool, tableOpts...),
		meshTasks:   tasks.NewTable[meshing.Result]("mesh", pool, tableOpts...),
		sink:        sink,
		log:         log,
		maxRequests: max(opts.MaxRequestsPerTick, 0),
		chunks:      world.NewChunkStore(),
		meshes:      make(map[world.ChunkCoord]*meshing.Mesh),
		proxies:     make(map[world.ChunkCoord]struct{}),
	}
	log.Info("Streamer started",
		zap.Int("workers", pool.Workers()),
		zap.Int("dimX", opts.Dims.X), zap.Int("dimY", opts.Dims.Y), zap.Int("dimZ", opts.Dims.Z))
	return s, nil
}

// Dims returns the chunk dimensions.
func (s *Streamer) Dims() world.Dims { return s.dims }

// Tick advances generation, meshing and eviction by one step for the
// given viewer positions. It never waits for a job. An error means a job
// failed and the streamer should be shut down.
func (s *Streamer) Tick(viewers []mgl32.Vec3, viewDistance int) error {
	defer profiling.Track("streaming.Tick")()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if viewDistance < 0 {
		return fmt.Errorf("streaming: negative view distance %d", viewDistance)
	}

	centers := make([]world.ChunkCoord, 0, len(viewers))
	for _, p := range viewers {
		centers = append(centers, world.ChunkCoordAt(p, s.dims))
	}

	budget := s.maxRequests
	if budget == 0 {
		budget = -1
	}
	for _, coord := range Desired(centers, viewDistance) {
		if err := s.advance(coord, &budget); err != nil {
			return err
		}
	}

	if n := s.evict(centers, viewDistance); n > 0 {
		s.log.Debug("Evicted chunks", zap.Int("count", n), zap.Int("resident", s.chunks.Len()))
	}

	keep := func(c world.ChunkCoord) bool { return InRange(c, centers, viewDistance) }
	s.chunkTasks.Sweep(keep)
	s.meshTasks.Sweep(keep)
	return nil
}

// advance moves one desired coordinate a step along generate, mesh, sink.
// budget counts remaining new jobs; negative means unlimited.
func (s *Streamer) advance(coord world.ChunkCoord, budget *int) error {
	chunk := s.chunks.Get(coord)
	if chunk == nil {
		if !s.chunkTasks.Pending(coord) && !take(budget) {
			return nil
		}
		c, ok, err := s.chunkTasks.RequestOrPoll(coord, s.gen.Job(coord))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		s.chunks.Add(c)
		chunk = c
		s.log.Debug("Chunk generated", zap.Stringer("coord", coord), zap.Int("solid", c.SolidCount()))
	}

	if _, ok := s.meshes[coord]; ok {
		return nil
	}
	if !s.meshTasks.Pending(coord) && !take(budget) {
		return nil
	}
	res, ok, err := s.meshTasks.RequestOrPoll(coord, meshing.Job(chunk))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if res.Source != chunk {
		// The chunk was edited while meshing; the next tick meshes the new one.
		return nil
	}

	s.meshes[coord] = res.Mesh
	s.proxies[coord] = struct{}{}
	s.sink.Upsert(coord, res.Mesh, mgl32.Translate3D(coord.Origin(s.dims).Elem()))
	s.log.Debug("Chunk meshed", zap.Stringer("coord", coord), zap.Int("quads", res.Mesh.QuadCount()))
	return nil
}

func take(budget *int) bool {
	if *budget < 0 {
		return true
	}
	if *budget == 0 {
		return false
	}
	*budget--
	return true
}

// SetVoxel edits a resident chunk. The chunk is copied and replaced, and
// its mesh is rebuilt on a later tick.
func (s *Streamer) SetVoxel(coord world.ChunkCoord, x, y, z int, v world.Voxel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	chunk := s.chunks.Get(coord)
	if chunk == nil {
		return fmt.Errorf("%w: %v", ErrNotResident, coord)
	}
	if !s.dims.Contains(x, y, z) {
		return fmt.Errorf("%w: (%d,%d,%d) in %v", ErrOutOfBounds, x, y, z, coord)
	}
	if chunk.At(x, y, z) == v {
		return nil
	}

	edited := chunk.Clone()
	edited.Set(x, y, z, v)
	s.chunks.Replace(edited)
	delete(s.meshes, coord)
	return nil
}

// SetVoxelWorld edits the voxel at a world voxel position.
func (s *Streamer) SetVoxelWorld(worldX, worldY, worldZ int, v world.Voxel) error {
	coord, x, y, z := world.Locate(worldX, worldY, worldZ, s.dims)
	return s.SetVoxel(coord, x, y, z, v)
}

// VoxelAt returns the voxel at a world voxel position and whether its
// chunk is resident.
func (s *Streamer) VoxelAt(worldX, worldY, worldZ int) (world.Voxel, bool) {
	coord, x, y, z := world.Locate(worldX, worldY, worldZ, s.dims)
	c := s.chunks.Get(coord)
	if c == nil {
		return world.Air, false
	}
	return c.At(x, y, z), true
}

// Mesh returns the cached mesh at coord, or nil.
func (s *Streamer) Mesh(coord world.ChunkCoord) *meshing.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meshes[coord]
}

// Resident reports whether a chunk is cached at coord.
func (s *Streamer) Resident(coord world.ChunkCoord) bool {
	return s.chunks.Has(coord)
}

// Stats returns the current telemetry.
func (s *Streamer) Stats() Stats {
	s.mu.Lock()
	meshes := len(s.meshes)
	s.mu.Unlock()

	return Stats{
		GenerationInFlight: s.chunkTasks.InFlight(),
		MeshingInFlight:    s.meshTasks.InFlight(),
		GenerationLatency:  s.chunkTasks.AverageLatency(),
		MeshingLatency:     s.meshTasks.AverageLatency(),
		Chunks:             s.chunks.Len(),
		Meshes:             meshes,
		QueuedJobs:         s.pool.Waiting(),
	}
}

// Run ticks every interval with positions from src until ctx is done or a
// tick fails.
func (s *Streamer) Run(ctx context.Context, src ViewerSource, viewDistance int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Tick(src.ViewerPositions(), viewDistance); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Shutdown waits for every in-flight job, stops the pool and disposes all
// drawables. It is safe to call more than once.
func (s *Streamer) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	gen := s.chunkTasks.Drain()
	mesh := s.meshTasks.Drain()
	s.pool.Shutdown()

	coords := make([]world.ChunkCoord, 0, len(s.proxies))
	for c := range s.proxies {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})
	for _, c := range coords {
		s.sink.Dispose(c)
	}

	for _, c := range s.chunks.Coords() {
		s.chunks.Remove(c)
	}
	clear(s.meshes)
	clear(s.proxies)

	s.log.Info("Streamer stopped",
		zap.Int("drainedGenerate", gen),
		zap.Int("drainedMesh", mesh),
		zap.Int("disposed", len(coords)))
}
