package classify

import (
	"fmt"
	"sort"

	"moodledger/internal/core"

	"github.com/jbrukh/bayesian"
)

// Sample is one labeled training example.
type Sample struct {
	Description string
	Category    string
}

// Train builds a classifier from labeled descriptions. At least two
// distinct categories are required; a one-class model would rubber-stamp
// every description.
func Train(samples []Sample) (*Bayes, error) {
	byCategory := make(map[string][]string)
	for _, s := range samples {
		if s.Category == "" || s.Description == "" {
			continue
		}
		byCategory[s.Category] = append(byCategory[s.Category], s.Description)
	}
	if len(byCategory) < 2 {
		return nil, core.WrapKind(core.ErrClassification,
			fmt.Errorf("need at least 2 categories to train, got %d", len(byCategory)))
	}

	labels := make([]string, 0, len(byCategory))
	for label := range byCategory {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	classes := make([]bayesian.Class, len(labels))
	for i, label := range labels {
		classes[i] = bayesian.Class(label)
	}

	cl := bayesian.NewClassifier(classes...)
	for i, label := range labels {
		for _, desc := range byCategory[label] {
			cl.Learn(tokenize(desc), classes[i])
		}
	}
	return &Bayes{cl: cl}, nil
}

// Freeze writes the trained model to disk in the format LoadFrozen reads.
func (b *Bayes) Freeze(path string) error {
	if err := b.cl.WriteToFile(path); err != nil {
		return core.WrapKind(core.ErrClassification, fmt.Errorf("write model %s: %w", path, err))
	}
	return nil
}
