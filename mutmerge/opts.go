package mutmerge

// Opts configure a merge run.
type Opts struct {
	// IncludeModel disables model-sample filtering entirely: metadata is not
	// loaded, model studies are not screened by path, and model rows pass.
	IncludeModel bool
	// Dedup enables cross-project duplicate detection on normalized sample
	// barcodes.
	Dedup bool
	// ModelStudyPatterns screen whole studies by path; each entry is a
	// case-insensitive regexp matched against the full file path.
	ModelStudyPatterns []string
	// MetadataPaths are explicit metadata files loaded after any discovered
	// in the input root.
	MetadataPaths []string
}

// DefaultOpts are the values used by the bio-mutmerge CLI.
var DefaultOpts = Opts{
	IncludeModel:       false,
	Dedup:              true,
	ModelStudyPatterns: DefaultModelStudyPatterns,
}
