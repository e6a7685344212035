package mutmerge

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/oncotools/mutmerge/samplefilter"
)

// mutationFilePrefix marks the mutation data files contributed by a study
// directory (data_mutations.txt, data_mutations_extended.txt, ...).
const mutationFilePrefix = "data_mutations"

// DefaultModelStudyPatterns screens out whole studies whose directory or
// file path names them as model data.  Each entry is a case-insensitive
// regexp matched against the full path; the words are bounded so that e.g.
// "brca_latest" is not screened by "test".
var DefaultModelStudyPatterns = []string{
	`\bccle\b`,
	`\bpdx\b`,
	`\bcellline\b`,
	`\bcell_line\b`,
	`\bxenograft\b`,
	`\btest\b`,
}

// maxLineBytes bounds a single mutation or metadata line.
const maxLineBytes = 1 << 20

var intRunRE = regexp.MustCompile(`\d+`)

// FindMutationFiles walks root and returns every file whose basename starts
// with the mutation-file prefix, in sorted path order.  Sorting is what
// fixes project iteration order, and with it first-seen duplicate
// attribution.  A nonexistent root yields nil.
func FindMutationFiles(root string) []string {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error.Printf("walk %s: %v", path, err)
			return nil
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), mutationFilePrefix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		log.Error.Printf("walk %s: %v", root, err)
	}
	sort.Strings(paths)
	return paths
}

// StudyInfo carries the project attribution derived from a mutation file
// path: the parent directory is the project, and its name split on '_'
// gives study and center.  Study+center form a UID so the same study
// contributed under two roots is merged once.
type StudyInfo struct {
	Project string
	Study   string
	Center  string
}

// UID returns the study deduplication key.
func (s StudyInfo) UID() string { return s.Study + s.Center }

func studyInfoFromPath(path string) StudyInfo {
	project := filepath.Base(filepath.Dir(path))
	info := StudyInfo{Project: project, Study: project}
	if i := strings.Index(project, "_"); i >= 0 {
		info.Study = project[:i]
		rest := project[i+1:]
		if j := strings.Index(rest, "_"); j >= 0 {
			rest = rest[:j]
		}
		info.Center = rest
	}
	return info
}

// compileStudyPatterns compiles the study screening patterns
// case-insensitively.  Invalid patterns are logged and dropped.
func compileStudyPatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			log.Error.Printf("model study pattern %q: %v", p, err)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// isModelStudyPath reports whether the path itself names a model study.
func isModelStudyPath(path string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Record is one row of the merged mutation stream.
type Record struct {
	Project         string
	Gene            string
	Sample          string
	VariantType     string
	HGVSp           string
	FrameshiftStart string
	FrameshiftLen   string
}

// mutationColumns are the resolved column indices of one mutation file.
// Any index may be -1 except hgvsp, which is mandatory.
type mutationColumns struct {
	gene        int
	vtype       int
	hgvsp       int
	sample      int
	consequence int
}

func resolveMutationColumns(headers []string) mutationColumns {
	cols := mutationColumns{gene: -1, vtype: -1, hgvsp: -1, sample: -1, consequence: -1}
	for i, h := range headers {
		switch strings.TrimSpace(h) {
		case "Hugo_Symbol":
			cols.gene = i
		case "Variant_Type":
			cols.vtype = i
		case "HGVSp":
			cols.hgvsp = i
		case "Tumor_Sample_Barcode":
			cols.sample = i
		case "Consequence":
			cols.consequence = i
		}
	}
	if cols.sample < 0 {
		cols.sample = samplefilter.ResolveColumn(headers, samplefilter.SampleIDColumns)
	}
	return cols
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// frameshiftInfo derives the frameshift start and length columns from the
// coding consequence and protein change.  Non-frameshift rows report length
// "0" with no start; for frameshift rows the first two integer runs in the
// HGVSp value give start and length.
func frameshiftInfo(consequence, hgvsp string) (start, length string) {
	if !strings.Contains(strings.ToLower(consequence), "frameshift") {
		return "", "0"
	}
	runs := intRunRE.FindAllString(hgvsp, 2)
	length = "0"
	if len(runs) >= 1 {
		start = runs[0]
	}
	if len(runs) >= 2 {
		length = runs[1]
	}
	return start, length
}

// openText opens path for reading, transparently decompressing .gz files.
// The returned cleanup closes both layers.
func openText(ctx context.Context, path string) (io.Reader, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, nil, err
		}
		return gz, func() error {
			if err := gz.Close(); err != nil {
				in.Close(ctx) // nolint: errcheck
				return err
			}
			return in.Close(ctx)
		}, nil
	}
	return r, func() error { return in.Close(ctx) }, nil
}
