package mutmerge

import "github.com/oncotools/mutmerge/samplefilter"

// DuplicateTracker maps each normalized sample barcode to the first project
// that recorded it.  One tracker is shared across every project in a merge
// run, which is what makes duplicate detection cross-project: whichever
// project is processed first claims the barcode and all later occurrences
// are duplicates.  Entries are only ever added; construct a fresh tracker
// per run.
type DuplicateTracker struct {
	firstProject map[string]string
}

// NewDuplicateTracker returns an empty tracker.
func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{firstProject: map[string]string{}}
}

// IsDuplicate reports whether the barcode's normalized form has already
// been recorded.  Empty barcodes are never duplicates.
func (t *DuplicateTracker) IsDuplicate(barcode string) bool {
	key := samplefilter.NormalizeBarcode(barcode)
	if key == "" {
		return false
	}
	_, ok := t.firstProject[key]
	return ok
}

// RecordSeen claims the barcode for project unless some project already
// claimed it; re-recording is a no-op so the first claim always wins.
// Empty barcodes are ignored.
func (t *DuplicateTracker) RecordSeen(barcode, project string) {
	key := samplefilter.NormalizeBarcode(barcode)
	if key == "" {
		return
	}
	if _, ok := t.firstProject[key]; !ok {
		t.firstProject[key] = project
	}
}

// FirstProject returns the project that first recorded the barcode.
func (t *DuplicateTracker) FirstProject(barcode string) (string, bool) {
	key := samplefilter.NormalizeBarcode(barcode)
	if key == "" {
		return "", false
	}
	project, ok := t.firstProject[key]
	return project, ok
}
