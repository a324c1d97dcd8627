package classifier

// FallbackModel is a rule-based scorer used when no trained model is
// available. The score is the mean of the weighted feature vector,
// which tracks "how many phishing traits fired" well enough for a
// fresh install to give useful answers.
type FallbackModel struct{}

// NewFallbackModel creates the rule-based fallback.
func NewFallbackModel() *FallbackModel {
	return &FallbackModel{}
}

// Score averages the feature vector, capped at 1.0. A vector with no
// traits at all still scores a small baseline rather than zero: absence
// of evidence is not certainty of legitimacy.
func (m *FallbackModel) Score(features []float64) (float64, error) {
	var sum float64
	for _, f := range features {
		sum += f
	}
	if sum <= 0 {
		return 0.1, nil
	}

	score := sum / float64(len(features))
	if score > 1.0 {
		score = 1.0
	}
	return score, nil
}

// Type returns the model kind identifier.
func (m *FallbackModel) Type() string {
	return "fallback"
}
