// Package samplefilter classifies tumor samples from study metadata so that
// mutation records originating from model systems (PDX, cell lines, and the
// like) can be excluded from merged analyses.  It discovers and parses
// per-study metadata files and produces a mapping from sample barcode to an
// is-model flag; the mutmerge package consumes that mapping when combining
// mutation files across studies.
package samplefilter
