package samplefilter

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grailbio/base/log"
)

// CanonicalMetadataNames are checked first, in this order, when scanning a
// study directory for metadata.  Order matters: later files overwrite
// earlier files' entries during loading.
var CanonicalMetadataNames = []string{
	"metadata.tsv",
	"samples.tsv",
	"clinical_sample.tsv",
	"sample_metadata.csv",
	"sample_annotations.tsv",
	"clinical.tsv",
}

// metadataKeywords match the remaining .tsv/.csv files in a directory by
// filename substring, case-insensitively.
var metadataKeywords = []string{"sample", "metadata", "clinical"}

// Project names a study subdirectory under an input root.
type Project struct {
	Name string
	Path string
}

// Discovery locates candidate metadata files.  The merge logic only ever
// sees path lists, so tests can substitute synthetic layouts.
type Discovery interface {
	// DiscoverMetadata returns candidate metadata files in dir: canonical
	// names first, then keyword matches in sorted order.  A nonexistent
	// directory yields nil.
	DiscoverMetadata(dir string) []string
	// Subdirectories returns the immediate subdirectories of dir in sorted
	// order.  A nonexistent directory yields nil.
	Subdirectories(dir string) []Project
}

// DirDiscovery is the local-filesystem Discovery.
type DirDiscovery struct{}

func (DirDiscovery) DiscoverMetadata(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error.Printf("discover metadata %s: %v", dir, err)
		}
		return nil
	}

	var found []string
	seen := map[string]bool{}
	byName := map[string]bool{}
	for _, e := range entries {
		if !e.IsDir() {
			byName[e.Name()] = true
		}
	}
	for _, name := range CanonicalMetadataNames {
		if byName[name] {
			path := filepath.Join(dir, name)
			found = append(found, path)
			seen[path] = true
		}
	}

	// Directory entries from os.ReadDir arrive sorted by name, which keeps
	// the keyword scan deterministic.
	for _, e := range entries {
		if e.IsDir() || !isMetadataName(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !seen[path] {
			found = append(found, path)
			seen[path] = true
		}
	}
	return found
}

func (DirDiscovery) Subdirectories(dir string) []Project {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error.Printf("list subdirectories %s: %v", dir, err)
		}
		return nil
	}
	var projects []Project
	for _, e := range entries {
		if e.IsDir() {
			projects = append(projects, Project{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects
}

func isMetadataName(name string) bool {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	if ext != ".tsv" && ext != ".csv" {
		return false
	}
	for _, kw := range metadataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
