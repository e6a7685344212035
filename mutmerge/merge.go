package mutmerge

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/oncotools/mutmerge/samplefilter"
)

// Merger merges mutation files from many studies into one stream.  It owns
// the run's RowFilter (and through it the DuplicateTracker) and the stats
// collection; construct a fresh Merger per run.
type Merger struct {
	opts          Opts
	filter        *RowFilter
	stats         *StatsCollection
	studyPatterns []*regexp.Regexp
	seenStudies   map[string]bool
	geneCounts    map[string]int
}

// NewMerger returns a Merger filtering against the given model-sample set.
// The set may be nil or empty when no metadata is available; path-based
// study screening still applies unless opts.IncludeModel is set.
func NewMerger(modelSamples map[string]struct{}, opts Opts) *Merger {
	return &Merger{
		opts:          opts,
		filter:        NewRowFilter(modelSamples, !opts.IncludeModel, opts.Dedup),
		stats:         NewStatsCollection(),
		studyPatterns: compileStudyPatterns(opts.ModelStudyPatterns),
		seenStudies:   map[string]bool{},
		geneCounts:    map[string]int{},
	}
}

// Stats returns the per-project statistics accumulated so far.
func (m *Merger) Stats() *StatsCollection { return m.stats }

// Filter returns the run's row filter.
func (m *Merger) Filter() *RowFilter { return m.filter }

// Run locates every mutation file under root and streams the accepted rows
// to emit in deterministic (sorted path) order.  File-level problems are
// logged and skipped; Run fails only when emit does.
func (m *Merger) Run(ctx context.Context, root string, emit func(Record) error) error {
	paths := FindMutationFiles(root)
	log.Printf("found %d mutation files under %s", len(paths), root)
	for _, path := range paths {
		if err := m.ProcessFile(ctx, path, emit); err != nil {
			return err
		}
	}
	return nil
}

// ProcessFile merges one mutation file, applying study-level screening
// before any row is read.
func (m *Merger) ProcessFile(ctx context.Context, path string, emit func(Record) error) error {
	info := studyInfoFromPath(path)
	if m.seenStudies[info.UID()] {
		log.Debug.Printf("skipping duplicate study %s (%s)", info.Project, path)
		return nil
	}
	m.seenStudies[info.UID()] = true

	if !m.opts.IncludeModel {
		if isModelStudyPath(path, m.studyPatterns) {
			log.Printf("skipping model study (path): %s", info.Project)
			return nil
		}
		entirelyModel, err := m.fileEntirelyModel(ctx, path)
		if err != nil {
			log.Error.Printf("mutation file %s: %v", path, err)
			return nil
		}
		if entirelyModel {
			log.Printf("skipping model study (all samples): %s", info.Project)
			return nil
		}
	}

	r, cleanup, err := openText(ctx, path)
	if err != nil {
		log.Error.Printf("mutation file %s: %v", path, err)
		return nil
	}
	defer cleanup() // nolint: errcheck
	return m.processRows(r, info, path, emit)
}

func (m *Merger) processRows(r io.Reader, info StudyInfo, path string, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLineBytes)

	header, ok := scanHeader(sc)
	if !ok {
		log.Error.Printf("empty mutation file %s", path)
		return nil
	}
	delim := string(samplefilter.SniffDelimiter(header))
	cols := resolveMutationColumns(strings.Split(header, delim))
	if cols.hgvsp < 0 {
		log.Error.Printf("missing HGVSp column in %s, skipping", info.Project)
		return nil
	}

	rejectedModel, rejectedDup := 0, 0
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), delim)
		sampleID := strings.TrimSpace(fieldAt(fields, cols.sample))

		verdict := m.filter.Classify(info.Project, sampleID)
		m.stats.Observe(info.Project, sampleID, verdict)
		switch verdict {
		case RowRejectedModel:
			rejectedModel++
			continue
		case RowRejectedDuplicate:
			rejectedDup++
			continue
		}

		rec := Record{
			Project:     info.Project,
			Gene:        fieldAt(fields, cols.gene),
			Sample:      fieldAt(fields, cols.sample),
			VariantType: fieldAt(fields, cols.vtype),
			HGVSp:       fieldAt(fields, cols.hgvsp),
		}
		consequence := fieldAt(fields, cols.consequence)
		if strings.Contains(strings.ToLower(consequence), "inframe") {
			rec.VariantType = "SNP"
		}
		rec.FrameshiftStart, rec.FrameshiftLen = frameshiftInfo(consequence, rec.HGVSp)

		m.geneCounts[rec.Gene]++
		if err := emit(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		log.Error.Printf("mutation file %s: %v", path, err)
		return nil
	}
	if rejectedModel > 0 || rejectedDup > 0 {
		log.Printf("%s: rejected %d model rows, %d duplicate rows", info.Project, rejectedModel, rejectedDup)
	}
	return nil
}

// fileEntirelyModel reports whether every non-empty sample in the file is a
// known model sample.  A file with no resolvable sample column, or no
// samples at all, is never entirely model.
func (m *Merger) fileEntirelyModel(ctx context.Context, path string) (bool, error) {
	if !m.filter.filterModel || len(m.filter.modelSamples) == 0 {
		return false, nil
	}
	r, cleanup, err := openText(ctx, path)
	if err != nil {
		return false, err
	}
	defer cleanup() // nolint: errcheck

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLineBytes)
	header, ok := scanHeader(sc)
	if !ok {
		return false, nil
	}
	delim := string(samplefilter.SniffDelimiter(header))
	cols := resolveMutationColumns(strings.Split(header, delim))
	if cols.sample < 0 {
		return false, nil
	}

	sawSample := false
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), delim)
		id := strings.TrimSpace(fieldAt(fields, cols.sample))
		if id == "" {
			continue
		}
		sawSample = true
		if !m.filter.ModelSample(id) {
			return false, nil
		}
	}
	return sawSample, sc.Err()
}

func scanHeader(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		return strings.TrimSpace(line), true
	}
	return "", false
}

// WriteGeneCounts writes the per-gene accepted row counts in sorted gene
// order, one "gene<TAB>count" line each.
func (m *Merger) WriteGeneCounts(w io.Writer) error {
	genes := make([]string, 0, len(m.geneCounts))
	for g := range m.geneCounts {
		genes = append(genes, g)
	}
	sort.Strings(genes)

	tw := tsv.NewWriter(w)
	for _, g := range genes {
		tw.WriteString(g)
		tw.WriteUint32(uint32(m.geneCounts[g]))
		if err := tw.EndLine(); err != nil {
			return errors.E(err, "write gene counts")
		}
	}
	return tw.Flush()
}

// RecordWriter renders merged records as headerless TSV rows of
// project, gene, sample, variant type, HGVSp, frameshift start, frameshift
// length.
type RecordWriter struct {
	tw *tsv.Writer
}

// NewRecordWriter returns a RecordWriter on w.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{tw: tsv.NewWriter(w)}
}

// Write renders one record.
func (w *RecordWriter) Write(r Record) error {
	w.tw.WriteString(r.Project)
	w.tw.WriteString(r.Gene)
	w.tw.WriteString(r.Sample)
	w.tw.WriteString(r.VariantType)
	w.tw.WriteString(r.HGVSp)
	w.tw.WriteString(r.FrameshiftStart)
	w.tw.WriteString(r.FrameshiftLen)
	return w.tw.EndLine()
}

// Flush flushes buffered rows.
func (w *RecordWriter) Flush() error { return w.tw.Flush() }
