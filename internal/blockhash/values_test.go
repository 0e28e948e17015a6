package blockhash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patternSource produces a deterministic non-uniform image without any
// decoding: channel values are a fixed mix of the coordinates.
type patternSource struct {
	w, h int
}

func (s patternSource) Dimensions() (int, int) { return s.w, s.h }

func (s patternSource) RGBA(x, y int) (r, g, b, a uint8) {
	return uint8((x*31 + y*17) % 256), uint8((x*7 + y*3) % 256), uint8((x + y*13) % 256), 255
}

func TestPickStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h, n int
		want    strategy
	}{
		{64, 64, 8, strategyAligned},
		{512, 512, 16, strategyAligned},
		{16, 8, 8, strategyAligned},
		{65, 64, 8, strategyBoxFiltered},
		{64, 63, 8, strategyBoxFiltered},
		{100, 60, 8, strategyBoxFiltered},
		{7, 64, 8, strategyGeneric},
		{64, 7, 8, strategyGeneric},
		{1, 1, 4, strategyGeneric},
		{3, 20, 12, strategyGeneric},
	}

	for _, tt := range tests {
		got := pickStrategy(tt.w, tt.h, tt.n)
		assert.Equal(t, tt.want, got, "pickStrategy(%d, %d, %d)", tt.w, tt.h, tt.n)
	}
}

func TestAlignedAgreesWithGeneric(t *testing.T) {
	t.Parallel()

	// On dimensions that are exact grid multiples the weighted sweep
	// degenerates to full per-pixel weights, so all three strategies must
	// produce identical block values.
	for _, size := range []Size{Size16, Size64, Size144, Size256} {
		n := size.grid()
		for _, dims := range [][2]int{{n, n}, {4 * n, 2 * n}, {3 * n, 5 * n}} {
			src := patternSource{w: dims[0], h: dims[1]}

			aligned := valuesAligned(src, n)
			generic := valuesGeneric(src, n)
			boxed := valuesBoxFiltered(src, n)

			require.Equal(t, generic, aligned, "%v at %dx%d", size, dims[0], dims[1])
			require.Equal(t, generic, boxed, "%v at %dx%d", size, dims[0], dims[1])
		}
	}
}

func TestBoxFilteredAgreesWithGeneric(t *testing.T) {
	t.Parallel()

	// Whenever both dimensions reach the grid size, the box-filtered sweep
	// is the fast case of the generic one and must match it exactly.
	for _, size := range []Size{Size16, Size64, Size144, Size256} {
		n := size.grid()
		for _, dims := range [][2]int{{n + 1, n + 1}, {2*n + 3, n}, {5*n - 1, 3*n + 7}} {
			src := patternSource{w: dims[0], h: dims[1]}

			boxed := valuesBoxFiltered(src, n)
			generic := valuesGeneric(src, n)

			require.Equal(t, generic, boxed, "%v at %dx%d", size, dims[0], dims[1])
		}
	}
}

func TestGenericValuesAreExactIntegrals(t *testing.T) {
	t.Parallel()

	// The sum over all blocks must equal the total image brightness scaled
	// by the shared weight normalization, regardless of strategy. For the
	// aligned strategy the per-pixel weight is n^2; for the weighted sweeps
	// the axis weights sum to the same factor.
	for _, dims := range [][2]int{{1, 1}, {3, 20}, {35, 2}, {26, 17}, {64, 64}} {
		src := patternSource{w: dims[0], h: dims[1]}
		n := Size64.grid()

		var total uint64
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				total += brightness(src, x, y)
			}
		}

		var sum uint64
		for _, v := range valuesGeneric(src, n) {
			sum += v
		}

		want := total * uint64(n) * uint64(n)
		require.Equal(t, want, sum, "%dx%d", dims[0], dims[1])
	}
}

func TestThresholdBitsBandMedian(t *testing.T) {
	t.Parallel()

	// 16 blocks (4x4 grid), bands of 4. Every band here is [1 2 3 4]: the
	// median is (2+3)/2 = 2, so exactly the two larger values set bits.
	values := []uint64{
		1, 2, 3, 4,
		4, 3, 2, 1,
		2, 4, 1, 3,
		3, 1, 4, 2,
	}

	got := thresholdBits(values, 4, 4)
	require.Len(t, got, 2)
	assert.Equal(t, "3c5a", fmt.Sprintf("%02x%02x", got[0], got[1]))
}

func TestThresholdBitsTieBreak(t *testing.T) {
	t.Parallel()

	// All-equal bands make every value tie with its median; the tie
	// resolves by comparison against half of the maximum block total.
	const w, h = 2, 2
	half := uint64(MaxBrightness) * w * h / 2

	low := make([]uint64, 16)
	high := make([]uint64, 16)
	for i := range low {
		low[i] = half // not strictly greater: all zero bits
		high[i] = half + 1
	}

	assert.Equal(t, []byte{0x00, 0x00}, thresholdBits(low, w, h))
	assert.Equal(t, []byte{0xff, 0xff}, thresholdBits(high, w, h))
}
