package compress

// NoOpCompressor provides a no-operation codec that bypasses data
// without compression.
//
// This codec is useful for:
//   - Testing and benchmarking scenarios measuring protocol overhead
//   - Development environments where compression is disabled for debugging
//   - Payloads that are already compressed or incompressible
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec that bypasses data.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the
// input. Callers should not modify the input data after calling this
// method if they plan to use the returned slice.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the
// input. Callers should not modify the input data after calling this
// method if they plan to use the returned slice.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
