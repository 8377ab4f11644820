package world

import "testing"

// Benchmark full noise generation of one reference-sized chunk.
func BenchmarkGenerateChunk(b *testing.B) {
	d := DefaultDims
	g := NewGenerator(NewNoiseField(DefaultNoiseParams(1337, 99), d), d)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Generate(ChunkCoord{X: i % 16, Z: i / 16})
	}
}

func BenchmarkHeightAt(b *testing.B) {
	n := NewNoiseField(DefaultNoiseParams(1337, 99), DefaultDims)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.HeightAt(i, i*3)
	}
}
