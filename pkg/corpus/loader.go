package corpus

import (
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// corpusFile is the on-disk YAML shape produced by the refresh job.
type corpusFile struct {
	Articles   []Article   `yaml:"articles"`
	Statistics []Statistic `yaml:"statistics"`
	WireItems  []WireItem  `yaml:"wire_items"`
}

// LoadFile reads a corpus YAML file, normalizes all text to NFC so that
// canonical serialization of equal logical content is byte-identical, and
// builds the initial snapshot.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load corpus %q: %w", path, err)
	}
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus %q: %w", path, err)
	}

	for i := range f.Articles {
		normalizeArticle(&f.Articles[i])
	}
	for i := range f.Statistics {
		normalizeStatistic(&f.Statistics[i])
	}
	for i := range f.WireItems {
		normalizeWireItem(&f.WireItems[i])
	}

	snap, err := NewSnapshot(1, f.Articles, f.Statistics, f.WireItems)
	if err != nil {
		return nil, fmt.Errorf("corpus %q: %w", path, err)
	}
	return snap, nil
}

func nfc(s string) string { return norm.NFC.String(s) }

func normalizeArticle(a *Article) {
	a.ID = nfc(a.ID)
	a.Headline = nfc(a.Headline)
	a.Summary = nfc(a.Summary)
	a.Body = nfc(a.Body)
	a.Author = nfc(a.Author)
	for i := range a.Tags {
		a.Tags[i] = nfc(a.Tags[i])
	}
	for i := range a.Sources {
		a.Sources[i].Label = nfc(a.Sources[i].Label)
		a.Sources[i].URL = nfc(a.Sources[i].URL)
	}
}

func normalizeStatistic(s *Statistic) {
	s.Key = nfc(s.Key)
	s.Label = nfc(s.Label)
	s.Value = nfc(s.Value)
	s.Unit = nfc(s.Unit)
	s.Category = nfc(s.Category)
	s.Source.Label = nfc(s.Source.Label)
	s.Source.URL = nfc(s.Source.URL)
}

func normalizeWireItem(w *WireItem) {
	w.Text = nfc(w.Text)
	w.Category = nfc(w.Category)
	for i := range w.Sources {
		w.Sources[i].Label = nfc(w.Sources[i].Label)
		w.Sources[i].URL = nfc(w.Sources[i].URL)
	}
}
