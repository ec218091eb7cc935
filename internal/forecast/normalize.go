package forecast

// Normalize maps data into [0,1] via min-max scaling and returns the scaled
// copy together with the observed min and max. When every value is equal
// the scaled series is all zero, which keeps the regression defined.
func Normalize(data []float64) (scaled []float64, min, max float64) {
	if len(data) == 0 {
		return nil, 0, 0
	}
	min, max = data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	scaled = make([]float64, len(data))
	if max == min {
		return scaled, min, max
	}
	span := max - min
	for i, v := range data {
		scaled[i] = (v - min) / span
	}
	return scaled, min, max
}

// Denormalize inverts Normalize for the given original min and max.
func Denormalize(scaled []float64, min, max float64) []float64 {
	out := make([]float64, len(scaled))
	span := max - min
	for i, v := range scaled {
		out[i] = v*span + min
	}
	return out
}
