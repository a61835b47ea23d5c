package outline

import (
	"errors"
	"sort"
)

// ErrNoSpans is returned when font statistics are requested for no spans.
var ErrNoSpans = errors.New("outline: no spans")

// BodyFontSize returns the median font size of spans. For an even count it
// is the mean of the two middle sizes.
func BodyFontSize(spans []NormalizedSpan) (float64, error) {
	if len(spans) == 0 {
		return 0, ErrNoSpans
	}

	sizes := make([]float64, len(spans))
	for i, s := range spans {
		sizes[i] = s.Size
	}
	sort.Float64s(sizes)

	n := len(sizes)
	if n%2 == 1 {
		return sizes[n/2], nil
	}
	return (sizes[n/2-1] + sizes[n/2]) / 2, nil
}
