package mutmerge

// Verdict is the per-row filtering decision.
type Verdict int

const (
	// RowAccepted rows flow into the merged output.
	RowAccepted Verdict = iota
	// RowRejectedModel rows belong to a model sample.
	RowRejectedModel
	// RowRejectedDuplicate rows repeat a sample already claimed by an
	// earlier project (or earlier in the same project).
	RowRejectedDuplicate
)

func (v Verdict) String() string {
	switch v {
	case RowAccepted:
		return "accepted"
	case RowRejectedModel:
		return "rejected-model"
	case RowRejectedDuplicate:
		return "rejected-duplicate"
	}
	return "unknown"
}

// RowFilter composes model-sample filtering and duplicate detection into a
// single per-row decision.  It owns the run's DuplicateTracker; the model
// check runs first so model rows never claim barcodes.  Rows with no
// resolvable sample identifier always pass: identity-based filters cannot
// apply to them and they never touch the tracker.
type RowFilter struct {
	modelSamples map[string]struct{}
	tracker      *DuplicateTracker
	filterModel  bool
	dedup        bool
}

// NewRowFilter builds a RowFilter for one merge run.  modelSamples may be
// nil when no metadata is available; filterModel and dedup independently
// enable the two rejection rules.
func NewRowFilter(modelSamples map[string]struct{}, filterModel, dedup bool) *RowFilter {
	return &RowFilter{
		modelSamples: modelSamples,
		tracker:      NewDuplicateTracker(),
		filterModel:  filterModel,
		dedup:        dedup,
	}
}

// Tracker exposes the run's duplicate registry, e.g. for first-project
// attribution in reports.
func (f *RowFilter) Tracker() *DuplicateTracker { return f.tracker }

// ModelSample reports whether the identifier is a known model sample.
func (f *RowFilter) ModelSample(sampleID string) bool {
	if sampleID == "" {
		return false
	}
	_, ok := f.modelSamples[sampleID]
	return ok
}

// Classify decides the verdict for one data row of project identified by
// sampleID, recording accepted identifiers into the duplicate registry.
func (f *RowFilter) Classify(project, sampleID string) Verdict {
	if sampleID == "" {
		return RowAccepted
	}
	if f.filterModel && f.ModelSample(sampleID) {
		return RowRejectedModel
	}
	if f.dedup {
		if f.tracker.IsDuplicate(sampleID) {
			return RowRejectedDuplicate
		}
		f.tracker.RecordSeen(sampleID, project)
	}
	return RowAccepted
}
