package samplefilter

import "strings"

// SniffDelimiter chooses between tab and comma for a delimited metadata or
// mutation file by counting both in the given line.  Ties go to tab, so a
// headerless or single-column line is treated as tab-separated.  The caller
// sniffs the header line once and reuses the result for every data line;
// files that mix delimiters per line are not supported.
func SniffDelimiter(line string) rune {
	if strings.Count(line, "\t") >= strings.Count(line, ",") {
		return '\t'
	}
	return ','
}
