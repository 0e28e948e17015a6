package blockhash

// strategy tags the block aggregation algorithm chosen from the image
// dimensions and the grid size.
type strategy int

const (
	// strategyAligned handles dimensions that are exact multiples of the
	// grid size: every pixel lands in exactly one block.
	strategyAligned strategy = iota
	// strategyBoxFiltered handles images at least as large as the grid in
	// both dimensions: a pixel overlaps at most a 2x2 block neighborhood.
	strategyBoxFiltered
	// strategyGeneric handles everything else: a pixel's footprint may
	// span a whole run of blocks per axis.
	strategyGeneric
)

func pickStrategy(width, height, n int) strategy {
	switch {
	case width%n == 0 && height%n == 0:
		return strategyAligned
	case width >= n && height >= n:
		return strategyBoxFiltered
	default:
		return strategyGeneric
	}
}

// valuesAligned accumulates brightness*n^2 into the single block containing
// each pixel. The n^2 scaling keeps magnitudes comparable with the weighted
// strategies, so the thresholder treats all three identically.
func valuesAligned(src PixelSource, n int) []uint64 {
	width, height := src.Dimensions()
	blockWidth := width / n
	blockHeight := height / n

	values := make([]uint64, n*n)
	scale := uint64(n) * uint64(n)

	for y := 0; y < height; y++ {
		idxRow := (y / blockHeight) * n
		for x := 0; x < width; x++ {
			values[idxRow+x/blockWidth] += brightness(src, x, y) * scale
		}
	}

	return values
}

// valuesBoxFiltered treats each pixel as a unit square mapped onto an n x n
// continuous grid. The split point between the current block and the next one
// is tracked incrementally per axis: (coord+1)*n mod dimension wraps past n
// exactly when the pixel boundary crosses a block boundary. Each pixel then
// contributes to up to four blocks, weighted by the overlap on both axes,
// yielding an exact area-weighted box filter.
func valuesBoxFiltered(src PixelSource, n int) []uint64 {
	w, h := src.Dimensions()
	width, height := uint64(w), uint64(h)
	grid := uint64(n)

	values := make([]uint64, n*n)

	blockBottom := uint64(0)
	weightTop, weightBottom := grid, uint64(0)

	for y := uint64(0); y < height; y++ {
		blockTop := blockBottom

		endY := (y + 1) * grid % height
		if endY < grid {
			blockBottom++
			weightTop = grid - endY
			weightBottom = endY
		}

		idxTop := blockTop * grid
		idxBottom := uint64(0)
		if blockBottom < grid {
			idxBottom = blockBottom * grid
		} // else: weightBottom is zero, index 0 receives nothing

		blockRight := uint64(0)
		weightLeft, weightRight := grid, uint64(0)

		for x := uint64(0); x < width; x++ {
			blockLeft := blockRight

			endX := (x + 1) * grid % width
			if endX < grid {
				blockRight++
				weightLeft = grid - endX
				weightRight = endX
			}

			idxLeft := blockLeft
			idxRight := uint64(0)
			if blockRight < grid {
				idxRight = blockRight
			}

			v := brightness(src, int(x), int(y))

			values[idxTop+idxLeft] += v * weightTop * weightLeft
			values[idxTop+idxRight] += v * weightTop * weightRight
			values[idxBottom+idxLeft] += v * weightBottom * weightLeft
			values[idxBottom+idxRight] += v * weightBottom * weightRight
		}
	}

	return values
}

// valuesGeneric is the fully general form of the box filter: the same
// incremental cursor as valuesBoxFiltered, but a pixel may additionally cover
// interior blocks strictly between the touched edges, which receive
// full-extent contributions per axis. Every block ends up with the exact
// integral of brightness over its rectangular region for arbitrary
// dimensions, including images smaller than the grid.
func valuesGeneric(src PixelSource, n int) []uint64 {
	w, h := src.Dimensions()
	width, height := uint64(w), uint64(h)
	grid := uint64(n)

	values := make([]uint64, n*n)

	blockBottom := uint64(0)
	weightTop, weightBottom := grid, uint64(0)

	for y := uint64(0); y < height; y++ {
		blockTop := blockBottom

		endY := (y + 1) * grid % height
		if endY < grid {
			blockBottom = (y + 1) * grid / height
			weightTop = (grid-1-endY)%height + 1
			weightBottom = endY
		}

		idxTop := blockTop * grid
		idxBottom := uint64(0)
		if blockBottom < grid {
			idxBottom = blockBottom * grid
		}

		blockRight := uint64(0)
		weightLeft, weightRight := grid, uint64(0)

		for x := uint64(0); x < width; x++ {
			blockLeft := blockRight

			endX := (x + 1) * grid % width
			if endX < grid {
				blockRight = (x + 1) * grid / width
				weightLeft = (grid-1-endX)%width + 1
				weightRight = endX
			}

			idxLeft := blockLeft
			idxRight := uint64(0)
			if blockRight < grid {
				idxRight = blockRight
			}

			v := brightness(src, int(x), int(y))

			values[idxTop+idxLeft] += v * weightTop * weightLeft
			values[idxTop+idxRight] += v * weightTop * weightRight
			values[idxBottom+idxLeft] += v * weightBottom * weightLeft
			values[idxBottom+idxRight] += v * weightBottom * weightRight

			for bx := blockLeft + 1; bx < blockRight; bx++ {
				values[idxTop+bx] += v * weightTop * width
				values[idxBottom+bx] += v * weightBottom * width
			}

			for by := blockTop + 1; by < blockBottom; by++ {
				idxY := by * grid
				values[idxY+idxLeft] += v * height * weightLeft
				values[idxY+idxRight] += v * height * weightRight
			}

			full := v * width * height
			for by := blockTop + 1; by < blockBottom; by++ {
				idxY := by * grid
				for bx := blockLeft + 1; bx < blockRight; bx++ {
					values[idxY+bx] += full
				}
			}
		}
	}

	return values
}
