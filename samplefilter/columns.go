package samplefilter

import "strings"

// SampleIDColumns lists the header names recognized as a sample identifier
// column, matched case-insensitively.
var SampleIDColumns = []string{
	"sample_id",
	"sample",
	"tumor_sample_barcode",
	"sample_barcode",
	"samplebarcode",
	"sampleid",
	"tumor_sample_id",
}

// SampleTypeColumns lists the header names recognized as a sample type
// column, matched case-insensitively.
var SampleTypeColumns = []string{
	"sample_type",
	"sampletype",
	"sample_type_detail",
	"model",
	"is_model",
	"sample_class",
	"sampleclass",
}

// ResolveColumn returns the index of the first header that, after trimming
// and lower-casing, exactly equals one of the candidates (also trimmed and
// lower-cased).  Headers are scanned left to right.  Returns -1 if no header
// matches.  There is no substring matching; "tumor_sample_barcode_2" does
// not resolve against "tumor_sample_barcode".
func ResolveColumn(headers []string, candidates []string) int {
	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		for _, candidate := range candidates {
			if h == strings.ToLower(strings.TrimSpace(candidate)) {
				return i
			}
		}
	}
	return -1
}
