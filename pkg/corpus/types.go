// Package corpus holds the in-memory news corpus: articles, statistics and
// wire items, grouped into immutable snapshots for consistent reads.
package corpus

import (
	"fmt"
	"time"
)

// Section is one of the fixed editorial sections.
type Section string

const (
	SectionPlatforms      Section = "platforms"
	SectionCommerce       Section = "commerce"
	SectionInfrastructure Section = "infrastructure"
	SectionRegulations    Section = "regulations"
	SectionLabor          Section = "labor"
	SectionOpinion        Section = "opinion"
)

// Sections lists all valid sections in masthead order.
func Sections() []Section {
	return []Section{
		SectionPlatforms,
		SectionCommerce,
		SectionInfrastructure,
		SectionRegulations,
		SectionLabor,
		SectionOpinion,
	}
}

// ParseSection validates a section name from external input.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections() {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// Source attributes a claim to where it came from.
type Source struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// Article is a full editorial piece. Immutable once published; refreshes
// replace the whole record keyed by ID.
type Article struct {
	ID          string     `json:"id" yaml:"id"`
	Headline    string     `json:"headline" yaml:"headline"`
	Summary     string     `json:"summary" yaml:"summary"`
	Body        string     `json:"body,omitempty" yaml:"body,omitempty"`
	Author      string     `json:"author,omitempty" yaml:"author,omitempty"`
	Section     Section    `json:"section" yaml:"section"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Confidence  Confidence `json:"confidence" yaml:"confidence"`
	Sources     []Source   `json:"sources,omitempty" yaml:"sources,omitempty"`
	PublishedAt time.Time  `json:"published_at" yaml:"published_at"`
}

// Validate enforces the corpus invariants for a single article.
// ID uniqueness is checked at snapshot build time.
func (a Article) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("article missing id")
	}
	if a.Headline == "" {
		return fmt.Errorf("article %s: missing headline", a.ID)
	}
	if _, err := ParseSection(string(a.Section)); err != nil {
		return fmt.Errorf("article %s: %w", a.ID, err)
	}
	if !a.Confidence.Valid() {
		return fmt.Errorf("article %s: invalid confidence", a.ID)
	}
	if a.Confidence != ConfidenceSelfReported && len(a.Sources) == 0 {
		return fmt.Errorf("article %s: %s articles require at least one source", a.ID, a.Confidence)
	}
	if a.PublishedAt.IsZero() {
		return fmt.Errorf("article %s: missing published_at", a.ID)
	}
	return nil
}

// Statistic is a single data-terminal measurement.
type Statistic struct {
	Key        string     `json:"key" yaml:"key"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Value      string     `json:"value" yaml:"value"`
	Unit       string     `json:"unit,omitempty" yaml:"unit,omitempty"`
	Category   string     `json:"category,omitempty" yaml:"category,omitempty"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	UpdatedAt  time.Time  `json:"updated_at" yaml:"updated_at"`
	Source     Source     `json:"source" yaml:"source"`
}

func (s Statistic) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("statistic missing key")
	}
	if s.Value == "" {
		return fmt.Errorf("statistic %s: missing value", s.Key)
	}
	if !s.Confidence.Valid() {
		return fmt.Errorf("statistic %s: invalid confidence", s.Key)
	}
	if s.UpdatedAt.IsZero() {
		return fmt.Errorf("statistic %s: missing updated_at", s.Key)
	}
	return nil
}

// WireItem is a short breaking-news entry, immutable once published.
type WireItem struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Text      string    `json:"text" yaml:"text"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Sources   []Source  `json:"sources,omitempty" yaml:"sources,omitempty"`
}

func (w WireItem) Validate() error {
	if w.Text == "" {
		return fmt.Errorf("wire item missing text")
	}
	if w.Timestamp.IsZero() {
		return fmt.Errorf("wire item %q: missing timestamp", w.Text)
	}
	return nil
}
