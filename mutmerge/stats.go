package mutmerge

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// ProjectStats counts filtering outcomes for one project.  Row counters and
// distinct-sample sets are tracked separately because one sample usually
// contributes many rows.
type ProjectStats struct {
	RowsAccepted  int
	RowsRejected  int
	RowsDuplicate int

	samplesAccepted  map[string]struct{}
	samplesRejected  map[string]struct{}
	samplesDuplicate map[string]struct{}
}

func newProjectStats() *ProjectStats {
	return &ProjectStats{
		samplesAccepted:  map[string]struct{}{},
		samplesRejected:  map[string]struct{}{},
		samplesDuplicate: map[string]struct{}{},
	}
}

// SamplesAccepted returns the number of distinct accepted sample identifiers.
func (s *ProjectStats) SamplesAccepted() int { return len(s.samplesAccepted) }

// SamplesRejected returns the number of distinct model-rejected sample identifiers.
func (s *ProjectStats) SamplesRejected() int { return len(s.samplesRejected) }

// SamplesDuplicate returns the number of distinct duplicate-rejected sample identifiers.
func (s *ProjectStats) SamplesDuplicate() int { return len(s.samplesDuplicate) }

func (s *ProjectStats) observe(sampleID string, v Verdict) {
	switch v {
	case RowAccepted:
		s.RowsAccepted++
		if sampleID != "" {
			s.samplesAccepted[sampleID] = struct{}{}
		}
	case RowRejectedModel:
		s.RowsRejected++
		if sampleID != "" {
			s.samplesRejected[sampleID] = struct{}{}
		}
	case RowRejectedDuplicate:
		s.RowsDuplicate++
		if sampleID != "" {
			s.samplesDuplicate[sampleID] = struct{}{}
		}
	}
}

// StatsCollection accumulates ProjectStats for every project touched by a
// merge run, remembering first-touch order so the report is emitted in
// processing order.
type StatsCollection struct {
	projects map[string]*ProjectStats
	order    []string
}

// NewStatsCollection returns an empty collection.
func NewStatsCollection() *StatsCollection {
	return &StatsCollection{projects: map[string]*ProjectStats{}}
}

// Get returns the stats for project, creating them on first use.
func (c *StatsCollection) Get(project string) *ProjectStats {
	if s, ok := c.projects[project]; ok {
		return s
	}
	s := newProjectStats()
	c.projects[project] = s
	c.order = append(c.order, project)
	return s
}

// Observe records one row verdict for project.
func (c *StatsCollection) Observe(project, sampleID string, v Verdict) {
	c.Get(project).observe(sampleID, v)
}

// Projects returns the project names in first-touch order.
func (c *StatsCollection) Projects() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// WriteReport renders one TSV row per project plus a TOTAL summary.  Row
// totals are sums; sample totals are the cardinality of the union across
// projects, so a sample rejected in two projects counts once.
func (c *StatsCollection) WriteReport(w io.Writer) error {
	tw := tsv.NewWriter(w)
	tw.WriteString("project\trows_accepted\trows_rejected\trows_duplicate\t" +
		"samples_accepted\tsamples_rejected\tsamples_duplicate")
	if err := tw.EndLine(); err != nil {
		return errors.E(err, "write stats header")
	}

	total := newProjectStats()
	for _, project := range c.order {
		s := c.projects[project]
		tw.WriteString(project)
		tw.WriteUint32(uint32(s.RowsAccepted))
		tw.WriteUint32(uint32(s.RowsRejected))
		tw.WriteUint32(uint32(s.RowsDuplicate))
		tw.WriteUint32(uint32(s.SamplesAccepted()))
		tw.WriteUint32(uint32(s.SamplesRejected()))
		tw.WriteUint32(uint32(s.SamplesDuplicate()))
		if err := tw.EndLine(); err != nil {
			return errors.E(err, "write stats for", project)
		}
		total.RowsAccepted += s.RowsAccepted
		total.RowsRejected += s.RowsRejected
		total.RowsDuplicate += s.RowsDuplicate
		for id := range s.samplesAccepted {
			total.samplesAccepted[id] = struct{}{}
		}
		for id := range s.samplesRejected {
			total.samplesRejected[id] = struct{}{}
		}
		for id := range s.samplesDuplicate {
			total.samplesDuplicate[id] = struct{}{}
		}
	}

	tw.WriteString("TOTAL")
	tw.WriteUint32(uint32(total.RowsAccepted))
	tw.WriteUint32(uint32(total.RowsRejected))
	tw.WriteUint32(uint32(total.RowsDuplicate))
	tw.WriteUint32(uint32(total.SamplesAccepted()))
	tw.WriteUint32(uint32(total.SamplesRejected()))
	tw.WriteUint32(uint32(total.SamplesDuplicate()))
	if err := tw.EndLine(); err != nil {
		return errors.E(err, "write stats totals")
	}
	return tw.Flush()
}
