package samplefilter

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultModelPatterns matches sample type annotations that denote a model
// specimen rather than patient material.  Each entry is a case-insensitive
// substring regexp; `[-_ ]?` tolerates the separator variants seen in the
// wild ("cell line", "cell-line", "cell_line", "cellline").
//
// "model" is a deliberate broad catch-all: any annotation containing the
// word anywhere (e.g. "tumor model") classifies as a model specimen.
var DefaultModelPatterns = []string{
	`pdx`,
	`patient[-_ ]?derived[-_ ]?xenograft`,
	`xenograft`,
	`cell[-_ ]?line`,
	`cellline`,
	`in[-_ ]?vitro`,
	`model`,
	`ccle`,
}

// ModelClassifier decides whether a free-text sample type value denotes a
// model (non-patient) specimen.  The pattern list is fixed at construction;
// the classifier is safe for concurrent use afterwards.
type ModelClassifier struct {
	patterns []*regexp.Regexp
}

// NewModelClassifier compiles the given substring patterns.  Use
// DefaultModelPatterns unless a study needs a custom list.
func NewModelClassifier(patterns []string) (*ModelClassifier, error) {
	c := &ModelClassifier{}
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, errors.Wrapf(err, "model pattern %q", p)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// IsModel reports whether the sample type value matches any model pattern.
// Empty input is never a model.
func (c *ModelClassifier) IsModel(sampleType string) bool {
	v := strings.ToLower(strings.TrimSpace(sampleType))
	if v == "" {
		return false
	}
	for _, re := range c.patterns {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}
