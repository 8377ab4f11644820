package world

import (
	"sort"
	"sync"
)

// ChunkStore is the cache of resident chunks. The streamer is its only
// writer; the lock lets diagnostics read it from other goroutines.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/replace/remove
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Get returns the chunk at coord, or nil.
func (cs *ChunkStore) Get(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// Has checks residency without returning the chunk.
func (cs *ChunkStore) Has(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// Add inserts a generated chunk. An existing entry is kept; Add reports
// whether the chunk was inserted.
func (cs *ChunkStore) Add(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.chunks[chunk.coord]; ok {
		return false
	}
	cs.chunks[chunk.coord] = chunk
	cs.modCount++
	return true
}

// Replace swaps in an edited copy of a resident chunk.
func (cs *ChunkStore) Replace(chunk *Chunk) {
	cs.mu.Lock()
	cs.chunks[chunk.coord] = chunk
	cs.modCount++
	cs.mu.Unlock()
}

// Remove evicts coord and reports whether it was resident.
func (cs *ChunkStore) Remove(coord ChunkCoord) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; !ok {
		return false
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return true
}

// Len returns the number of resident chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// Coords returns the resident coordinates in a stable order.
func (cs *ChunkStore) Coords() []ChunkCoord {
	cs.mu.RLock()
	coords := make([]ChunkCoord, 0, len(cs.chunks))
	for coord := range cs.chunks {
		coords = append(coords, coord)
	}
	cs.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})
	return coords
}

// ModCount returns the modification counter of the store.
func (cs *ChunkStore) ModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}
