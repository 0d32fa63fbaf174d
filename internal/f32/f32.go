// Package f32 holds the float32 vector kernels used by the strategy table.
// AxpyUnitary and DotUnitary follow the Gonum generic implementations.
package f32

// AxpyUnitary is
//
//	for i, v := range x {
//		y[i] += alpha * v
//	}
func AxpyUnitary(alpha float32, x, y []float32) {
	for i, v := range x {
		y[i] += alpha * v
	}
}

// DotUnitary is
//
//	for i, v := range x {
//		sum += y[i] * v
//	}
//	return sum
func DotUnitary(x, y []float32) (sum float32) {
	for i, v := range x {
		sum += y[i] * v
	}
	return sum
}

// ScalUnitaryTo is
//
//	for i, v := range x {
//		dst[i] = alpha * v
//	}
func ScalUnitaryTo(dst []float32, alpha float32, x []float32) {
	for i, v := range x {
		dst[i] = alpha * v
	}
}

// Fill sets every element of x to alpha.
func Fill(alpha float32, x []float32) {
	for i := range x {
		x[i] = alpha
	}
}

// Sum returns the sum of the elements of x.
func Sum(x []float32) float32 {
	var sum float32
	for _, v := range x {
		sum += v
	}
	return sum
}

// PositivePartTo writes max(x[i], 0) into dst and returns the sum of dst.
func PositivePartTo(dst, x []float32) float32 {
	var sum float32
	for i, v := range x {
		if v < 0 {
			v = 0
		}
		dst[i] = v
		sum += v
	}
	return sum
}
