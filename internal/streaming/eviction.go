package streaming

import (
	"sort"

	"mini-terrain/internal/world"
)

// InRange reports whether coord is within viewDistance (Manhattan, in
// chunks) of at least one viewer chunk.
func InRange(coord world.ChunkCoord, viewers []world.ChunkCoord, viewDistance int) bool {
	for _, v := range viewers {
		if world.ManhattanDistance(v, coord) <= viewDistance {
			return true
		}
	}
	return false
}

// Diamond enumerates every chunk within Manhattan distance viewDistance
// of center, nearest first.
func Diamond(center world.ChunkCoord, viewDistance int) []world.ChunkCoord {
	if viewDistance < 0 {
		return nil
	}
	out := make([]world.ChunkCoord, 0, 2*viewDistance*viewDistance+2*viewDistance+1)
	for i := -viewDistance; i <= viewDistance; i++ {
		span := viewDistance - abs(i)
		for j := -span; j <= span; j++ {
			out = append(out, center.Add(i, j))
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return world.ManhattanDistance(center, out[a]) < world.ManhattanDistance(center, out[b])
	})
	return out
}

// Desired merges the diamonds of all viewers, keeping each coordinate once.
func Desired(viewers []world.ChunkCoord, viewDistance int) []world.ChunkCoord {
	seen := make(map[world.ChunkCoord]struct{})
	var out []world.ChunkCoord
	for _, v := range viewers {
		for _, c := range Diamond(v, viewDistance) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// evict removes every resident chunk outside range from the chunk cache,
// the mesh cache and the sink. Caller holds s.mu.
func (s *Streamer) evict(viewers []world.ChunkCoord, viewDistance int) int {
	removed := 0
	for _, coord := range s.chunks.Coords() {
		if InRange(coord, viewers, viewDistance) {
			continue
		}
		s.chunks.Remove(coord)
		delete(s.meshes, coord)
		if _, ok := s.proxies[coord]; ok {
			delete(s.proxies, coord)
			s.sink.Dispose(coord)
		}
		removed++
	}
	return removed
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
