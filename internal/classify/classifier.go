// Package classify wraps the frozen category model. The model is a
// naive-Bayes classifier trained offline and shipped as a gob artifact;
// this process only loads and queries it, never retrains it.
package classify

import (
	"context"
	"fmt"
	"strings"

	"moodledger/internal/core"

	"github.com/jbrukh/bayesian"
)

// Bayes predicts a spending category from a transaction description. Its
// class list is the single source of truth for valid category labels.
type Bayes struct {
	cl *bayesian.Classifier
}

// LoadFrozen reads the trained artifact from disk. Called once at startup;
// there is no re-load or hot-swap path.
func LoadFrozen(path string) (*Bayes, error) {
	cl, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, core.WrapKind(core.ErrClassification, fmt.Errorf("load model %s: %w", path, err))
	}
	if len(cl.Classes) == 0 {
		return nil, core.WrapKind(core.ErrClassification, fmt.Errorf("model %s has no classes", path))
	}
	return &Bayes{cl: cl}, nil
}

// Predict returns the most likely category label for the description. The
// description is the sole feature.
func (b *Bayes) Predict(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", core.WrapKind(core.ErrClassification, err)
	}
	_, inx, _ := b.cl.LogScores(tokenize(text))
	return string(b.cl.Classes[inx]), nil
}

// Labels returns the known category label set.
func (b *Bayes) Labels() []string {
	out := make([]string, len(b.cl.Classes))
	for i, c := range b.cl.Classes {
		out[i] = string(c)
	}
	return out
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
