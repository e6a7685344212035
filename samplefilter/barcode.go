package samplefilter

import (
	"regexp"
	"strings"
)

// canonicalBarcodeLen is the prefix length that identifies one biological
// sample under the clinical barcode convention (e.g. TCGA-AB-1234-01).
// Trailing segments beyond it name the physical portion, analyte, and plate
// of an aliquot, so two barcodes sharing the prefix are the same sample.
const canonicalBarcodeLen = 15

// PROJECT-TSS-PARTICIPANT-SAMPLE, e.g. TCGA-AB-1234-01A-11D-2668-08.
var clinicalBarcodeRE = regexp.MustCompile(`^[A-Za-z0-9]{4}-[A-Za-z0-9]{2}-[A-Za-z0-9]{4}-[A-Za-z0-9]{2}`)

// NormalizeBarcode canonicalizes a sample barcode to its biological-sample
// identity.  Barcodes following the clinical convention and longer than the
// 15-character canonical prefix are truncated to that prefix, collapsing
// aliquot-level suffixes.  Anything else is returned unchanged apart from
// whitespace trimming, and compares by exact text equality.
func NormalizeBarcode(barcode string) string {
	b := strings.TrimSpace(barcode)
	if len(b) > canonicalBarcodeLen && clinicalBarcodeRE.MatchString(b) {
		return b[:canonicalBarcodeLen]
	}
	return b
}
