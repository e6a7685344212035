package samplefilter

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// metadataScanBuf bounds a single metadata line.  Clinical sample sheets are
// narrow; 1MB leaves generous headroom.
const metadataScanBuf = 1 << 20

// ParseMetadataFile parses one delimited metadata file into a mapping from
// sample identifier to is-model flag.  Leading '#' lines are skipped, the
// delimiter is sniffed from the header line, and the sample-ID and
// sample-type columns are resolved against SampleIDColumns and
// SampleTypeColumns.  A file without a header or without both columns
// contributes an empty mapping, not an error; later rows overwrite earlier
// rows for the same identifier.  Only open/read failures are returned as
// errors.
func ParseMetadataFile(ctx context.Context, path string, classifier *ModelClassifier) (result map[string]bool, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)

	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	result = map[string]bool{}
	err = parseMetadata(r, classifier, result)
	return result, err
}

func parseMetadata(r io.Reader, classifier *ModelClassifier, result map[string]bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), metadataScanBuf)

	header := ""
	haveHeader := false
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		header = strings.TrimSpace(line)
		haveHeader = true
		break
	}
	if !haveHeader {
		return sc.Err()
	}

	delim := string(SniffDelimiter(header))
	headers := strings.Split(header, delim)
	idIdx := ResolveColumn(headers, SampleIDColumns)
	typeIdx := ResolveColumn(headers, SampleTypeColumns)
	if idIdx < 0 || typeIdx < 0 {
		// No resolvable columns: the file contributes nothing.
		return sc.Err()
	}
	need := idIdx
	if typeIdx > need {
		need = typeIdx
	}

	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), delim)
		if len(fields) <= need {
			continue
		}
		id := strings.TrimSpace(fields[idIdx])
		if id == "" {
			continue
		}
		result[id] = classifier.IsModel(fields[typeIdx])
	}
	return sc.Err()
}
