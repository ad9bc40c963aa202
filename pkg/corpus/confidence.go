package corpus

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Confidence classifies how verified a claim is. The zero value is invalid;
// levels are ordered from most to least verified and the ordering is used
// only for display and sort tie-breaks, never for filtering.
type Confidence int

const (
	ConfidenceVerified Confidence = iota + 1
	ConfidenceReported
	ConfidenceForecast
	ConfidenceEstimated
	ConfidenceSelfReported
)

var confidenceNames = map[Confidence]string{
	ConfidenceVerified:     "VERIFIED",
	ConfidenceReported:     "REPORTED",
	ConfidenceForecast:     "FORECAST",
	ConfidenceEstimated:    "ESTIMATED",
	ConfidenceSelfReported: "SELF-REPORTED",
}

// confidenceDefinitions is the fixed editorial definition for each level,
// returned verbatim by the editorial standards tool.
var confidenceDefinitions = map[Confidence]string{
	ConfidenceVerified:     "Verified via primary source (company blog, SEC filing, peer-reviewed paper).",
	ConfidenceReported:     "Published by a credible outlet (Reuters, Bloomberg, TechCrunch) but not independently verified.",
	ConfidenceForecast:     "Forward-looking projection from a named analyst or model; not yet observable.",
	ConfidenceEstimated:    "Industry estimate, analyst projection, or aggregated from multiple sources.",
	ConfidenceSelfReported: "Figure supplied by the subject itself and not independently checkable.",
}

// ConfidenceLevels lists all levels in display order (most verified first).
func ConfidenceLevels() []Confidence {
	return []Confidence{
		ConfidenceVerified,
		ConfidenceReported,
		ConfidenceForecast,
		ConfidenceEstimated,
		ConfidenceSelfReported,
	}
}

func (c Confidence) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Confidence(%d)", int(c))
}

// Definition returns the fixed editorial definition text for the level.
func (c Confidence) Definition() string {
	return confidenceDefinitions[c]
}

// Valid reports whether c is one of the five taxonomy levels.
func (c Confidence) Valid() bool {
	_, ok := confidenceNames[c]
	return ok
}

// ParseConfidence maps the wire form (e.g. "SELF-REPORTED") back to a level.
func ParseConfidence(s string) (Confidence, error) {
	for level, name := range confidenceNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown confidence level %q", s)
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid confidence %d", int(c))
	}
	return []byte(`"` + confidenceNames[c] + `"`), nil
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("confidence must be a JSON string, got %s", data)
	}
	level, err := ParseConfidence(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = level
	return nil
}

func (c Confidence) MarshalYAML() (interface{}, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid confidence %d", int(c))
	}
	return confidenceNames[c], nil
}

func (c *Confidence) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("confidence must be a string: %w", err)
	}
	level, err := ParseConfidence(s)
	if err != nil {
		return err
	}
	*c = level
	return nil
}
