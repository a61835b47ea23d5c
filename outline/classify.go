package outline

// DefaultRatio is the minimum size multiple over the body font for a span to
// count as a heading.
const DefaultRatio = 1.15

// Level thresholds on size/bodySize, checked from the top.
const (
	h1Threshold = 2.0
	h2Threshold = 1.6
	h3Threshold = 1.3
)

// Classifier labels spans against a fixed body font size.
type Classifier struct {
	BodySize float64
	Ratio    float64
}

// NewClassifier returns a Classifier. A non-positive ratio selects
// DefaultRatio.
func NewClassifier(bodySize, ratio float64) Classifier {
	if ratio <= 0 {
		ratio = DefaultRatio
	}
	return Classifier{BodySize: bodySize, Ratio: ratio}
}

// Qualifies reports whether a span of the given size is a heading.
func (c Classifier) Qualifies(size float64) bool {
	return c.BodySize > 0 && size >= c.BodySize*c.Ratio
}

// Level ranks a qualifying size.
func (c Classifier) Level(size float64) Level {
	return LevelFor(size / c.BodySize)
}

// Classify keeps the spans that qualify as headings, in input order.
func (c Classifier) Classify(spans []NormalizedSpan) []HeadingCandidate {
	var out []HeadingCandidate
	for _, s := range spans {
		if !c.Qualifies(s.Size) {
			continue
		}
		out = append(out, HeadingCandidate{NormalizedSpan: s, Level: c.Level(s.Size)})
	}
	return out
}

// Classify is shorthand for NewClassifier(bodySize, ratio).Classify(spans).
func Classify(spans []NormalizedSpan, bodySize, ratio float64) []HeadingCandidate {
	return NewClassifier(bodySize, ratio).Classify(spans)
}

// LevelFor maps a size ratio to a heading level.
func LevelFor(rel float64) Level {
	switch {
	case rel > h1Threshold:
		return H1
	case rel > h2Threshold:
		return H2
	case rel > h3Threshold:
		return H3
	default:
		return H4
	}
}
