package classifier

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrThresholdRange indicates a classification threshold outside [0, 1].
var ErrThresholdRange = errors.New("classifier: threshold must be between 0 and 1")

// Confidence levels reported with predictions.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Prediction is the outcome of scoring one message.
type Prediction struct {
	// IsPhishing is the verdict relative to the threshold.
	IsPhishing bool

	// Probability is the model's phishing probability in [0, 1].
	Probability float64

	// ConfidenceLevel is High, Medium, or Low based on how far the
	// probability sits from the decision boundary.
	ConfidenceLevel string

	// RiskFactors are human-readable reasons the message looks risky.
	RiskFactors []string

	// FeaturesDetected are neutral observations about the message.
	FeaturesDetected []string

	// Features is the raw feature vector scored by the model.
	Features []float64

	// ModelName identifies the model that produced the score.
	ModelName string

	// Timestamp records when the prediction was made.
	Timestamp time.Time
}

// Predictor scores messages with a loaded model and a configurable
// decision threshold.
//
// Design decision: The predictor is constructed infallibly. A missing
// or broken model silently degrades to the rule-based fallback because
// analysis must work on a fresh install with no trained model, and the
// HTTP server must not refuse to start over a model problem.
type Predictor struct {
	mu        sync.RWMutex
	model     Model
	modelName string
	metadata  *Metadata
	threshold float64
}

// NewPredictor loads the named model from modelDir, or the newest one
// when name is empty. On any load failure it returns a predictor backed
// by the rule-based fallback.
func NewPredictor(modelDir, name string) *Predictor {
	p := &Predictor{threshold: 0.5}

	loaded, err := LoadModel(modelDir, name)
	if err != nil {
		p.model = NewFallbackModel()
		p.modelName = "fallback"
		p.metadata = &Metadata{
			ModelType:   "fallback",
			Description: "rule-based fallback used when no trained model is available",
		}
		return p
	}

	p.model = loaded.Model
	p.modelName = loaded.Name
	p.metadata = loaded.Metadata
	return p
}

// SetThreshold updates the decision threshold.
func (p *Predictor) SetThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrThresholdRange, threshold)
	}
	p.mu.Lock()
	p.threshold = threshold
	p.mu.Unlock()
	return nil
}

// Threshold returns the current decision threshold.
func (p *Predictor) Threshold() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.threshold
}

// ModelName returns the name of the loaded model.
func (p *Predictor) ModelName() string {
	return p.modelName
}

// Metadata returns the training metadata for the loaded model, or nil.
func (p *Predictor) Metadata() *Metadata {
	return p.metadata
}

// HasTrainedModel reports whether a real model is loaded rather than
// the rule-based fallback.
func (p *Predictor) HasTrainedModel() bool {
	_, fallback := p.model.(*FallbackModel)
	return !fallback
}

// Predict scores one message's text and derives the verdict and the
// human-readable detail lists. A model scoring error never fails the
// call; it yields a neutral 0.5 probability instead.
func (p *Predictor) Predict(text string) Prediction {
	features := ExtractFeatures(text)

	probability, err := p.model.Score(features)
	if err != nil {
		probability = 0.5
	}

	threshold := p.Threshold()
	prediction := Prediction{
		IsPhishing:  probability >= threshold,
		Probability: probability,
		Features:    features,
		ModelName:   p.modelName,
		Timestamp:   time.Now().UTC(),
	}

	switch {
	case probability > 0.8:
		prediction.ConfidenceLevel = ConfidenceHigh
	case probability > 0.6:
		prediction.ConfidenceLevel = ConfidenceMedium
	default:
		prediction.ConfidenceLevel = ConfidenceLow
	}

	prediction.RiskFactors, prediction.FeaturesDetected = describeText(text)
	return prediction
}

// Keyword groups used only for the human-readable detail lists. These
// are deliberately shorter than the feature groups: the details call
// out the clearest signals instead of everything the model weighs.
var (
	detailShortDomains   = []string{"bit.ly", "tinyurl", "goo.gl", "t.co"}
	detailUrgencyWords   = []string{"urgent", "immediately", "expires", "act now", "limited time"}
	detailSensitiveWords = []string{"password", "credit card", "ssn", "login"}
	detailMoneyWords     = []string{"money", "payment", "prize", "reward", "gift card"}
)

// describeText produces the risk-factor and feature-detected lists for
// a prediction.
func describeText(text string) (riskFactors, featuresDetected []string) {
	lower := strings.ToLower(text)

	urls := featureURLRegex.FindAllString(text, -1)
	if len(urls) > 0 {
		featuresDetected = append(featuresDetected,
			fmt.Sprintf("Contains %d URL(s)", len(urls)))

		for _, url := range urls {
			if containsAny(strings.ToLower(url), detailShortDomains) {
				riskFactors = append(riskFactors, "Contains shortened URLs")
				break
			}
		}
	}

	if found := foundTerms(lower, detailUrgencyWords); len(found) > 0 {
		riskFactors = append(riskFactors,
			"Urgency language: "+strings.Join(found, ", "))
	}

	if found := foundTerms(lower, detailSensitiveWords); len(found) > 0 {
		riskFactors = append(riskFactors,
			"Requests sensitive data: "+strings.Join(found, ", "))
	}

	if found := foundTerms(lower, detailMoneyWords); len(found) > 0 {
		featuresDetected = append(featuresDetected,
			"Financial terms: "+strings.Join(found, ", "))
	}

	return riskFactors, featuresDetected
}

// foundTerms returns the terms present in text, in list order.
func foundTerms(text string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}
