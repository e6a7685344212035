// Package mutmerge combines per-study tabular mutation files into one
// consolidated stream.  Rows from model-derived samples are rejected using
// metadata loaded by the samplefilter package, and biological duplicates
// (the same normalized sample barcode appearing again in any study) are
// rejected with first-seen-study attribution.  Per-study accept/reject
// statistics are collected alongside the merge.
package mutmerge
