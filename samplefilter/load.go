package samplefilter

import (
	"context"
	"os"

	"github.com/grailbio/base/log"
)

// Loader aggregates parsed metadata files into one sample→is-model mapping.
// Later files overwrite earlier files' entries for the same identifier, so
// load order is part of the contract: canonical names first, then keyword
// matches, then explicitly supplied paths.
type Loader struct {
	disc       Discovery
	classifier *ModelClassifier
}

// NewLoader returns a Loader using the given discovery and classifier.
func NewLoader(disc Discovery, classifier *ModelClassifier) *Loader {
	return &Loader{disc: disc, classifier: classifier}
}

// Load builds a sample→is-model mapping from pathOrDir.  A file path is
// parsed alone; a directory is scanned via Discovery.  Additional paths are
// appended after discovered ones unless already present.  Unreadable files
// are logged and skipped; the result is whatever could be parsed.
func (l *Loader) Load(ctx context.Context, pathOrDir string, additional ...string) map[string]bool {
	var paths []string
	if info, err := os.Stat(pathOrDir); err == nil && !info.IsDir() {
		paths = append(paths, pathOrDir)
	} else {
		paths = append(paths, l.disc.DiscoverMetadata(pathOrDir)...)
	}
	seen := map[string]bool{}
	for _, p := range paths {
		seen[p] = true
	}
	for _, p := range additional {
		if !seen[p] {
			paths = append(paths, p)
			seen[p] = true
		}
	}

	merged := map[string]bool{}
	for _, p := range paths {
		fileMap, err := ParseMetadataFile(ctx, p, l.classifier)
		if err != nil {
			log.Error.Printf("metadata %s: %v", p, err)
			continue
		}
		for id, isModel := range fileMap {
			merged[id] = isModel
		}
	}
	return merged
}

// LoadProjects runs Load against every immediate subdirectory of root and
// returns the per-project mappings keyed by subdirectory name.  A project
// with no parseable metadata is omitted entirely; absence means "no
// per-sample filtering available", which is distinct from present-but-empty.
func (l *Loader) LoadProjects(ctx context.Context, root string) map[string]map[string]bool {
	result := map[string]map[string]bool{}
	for _, proj := range l.disc.Subdirectories(root) {
		m := l.Load(ctx, proj.Path)
		if len(m) == 0 {
			continue
		}
		result[proj.Name] = m
	}
	return result
}

// ModelSamples filters a metadata mapping down to the set of identifiers
// flagged as model samples.
func ModelSamples(metadata map[string]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for id, isModel := range metadata {
		if isModel {
			set[id] = struct{}{}
		}
	}
	return set
}
