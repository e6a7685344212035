package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/oncotools/mutmerge/mutmerge"
	"github.com/oncotools/mutmerge/samplefilter"
	"v.io/x/lib/cmdline"
)

type mergeFlags struct {
	output       *string
	statsOutput  *string
	metadata     *string
	includeModel *bool
	noDedup      *bool
}

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "merge",
		Short: `Merge per-study mutation files into one stream.
Rows from model samples (PDX, cell lines) are dropped using study metadata,
and samples already seen in an earlier study are dropped as duplicates.`,
		ArgsName: "inputdir",
	}
	flags := mergeFlags{
		output:      cmd.Flags.String("output", "", "Merged output path (default stdout). A .gz suffix enables gzip; a per-gene count sidecar is written next to it with a .cnt suffix."),
		statsOutput: cmd.Flags.String("stats-output", "", "Per-project filtering statistics TSV (default stderr)."),
		metadata: cmd.Flags.String("metadata", "", `Comma-separated metadata files for sample classification,
loaded after any discovered in inputdir.`),
		includeModel: cmd.Flags.Bool("include-model", false, "Keep model-sample rows (disables metadata loading and study screening)."),
		noDedup:      cmd.Flags.Bool("no-dedup", false, "Disable cross-study sample deduplication."),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("merge takes one input directory, but got %v", argv)
		}
		return runMerge(argv[0], flags)
	})
	return cmd
}

func runMerge(root string, flags mergeFlags) (err error) {
	ctx := vcontext.Background()
	opts := mutmerge.DefaultOpts
	opts.IncludeModel = *flags.includeModel
	opts.Dedup = !*flags.noDedup
	if *flags.metadata != "" {
		opts.MetadataPaths = strings.Split(*flags.metadata, ",")
	}

	classifier, err := samplefilter.NewModelClassifier(samplefilter.DefaultModelPatterns)
	if err != nil {
		return err
	}
	modelSamples := map[string]struct{}{}
	if !opts.IncludeModel {
		loader := samplefilter.NewLoader(samplefilter.DirDiscovery{}, classifier)
		metadata := loader.Load(ctx, root, opts.MetadataPaths...)
		modelSamples = samplefilter.ModelSamples(metadata)
		if len(modelSamples) > 0 {
			log.Printf("loaded %d model samples from metadata", len(modelSamples))
		} else {
			log.Printf("no metadata found, using path-based screening only")
		}
	}

	out, cleanup, err := createOutput(ctx, *flags.output)
	if err != nil {
		return err
	}
	defer func() {
		if e := cleanup(); e != nil && err == nil {
			err = e
		}
	}()

	merger := mutmerge.NewMerger(modelSamples, opts)
	w := mutmerge.NewRecordWriter(out)
	if err := merger.Run(ctx, root, w.Write); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if *flags.output != "" {
		cntPath := trimOutputExt(*flags.output) + ".cnt"
		cnt, cntCleanup, err := createOutput(ctx, cntPath)
		if err != nil {
			return err
		}
		if err := merger.WriteGeneCounts(cnt); err != nil {
			cntCleanup() // nolint: errcheck
			return err
		}
		if err := cntCleanup(); err != nil {
			return err
		}
	}

	if *flags.statsOutput != "" {
		stats, statsCleanup, err := createOutput(ctx, *flags.statsOutput)
		if err != nil {
			return err
		}
		if err := merger.Stats().WriteReport(stats); err != nil {
			statsCleanup() // nolint: errcheck
			return err
		}
		return statsCleanup()
	}
	return merger.Stats().WriteReport(os.Stderr)
}

func newCmdMetadata() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "metadata",
		Short:    "Print the sample classification parsed from a metadata file or directory",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("metadata takes one path, but got %v", argv)
		}
		ctx := vcontext.Background()
		classifier, err := samplefilter.NewModelClassifier(samplefilter.DefaultModelPatterns)
		if err != nil {
			return err
		}
		loader := samplefilter.NewLoader(samplefilter.DirDiscovery{}, classifier)
		metadata := loader.Load(ctx, argv[0])
		ids := make([]string, 0, len(metadata))
		for id := range metadata {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(env.Stdout, "%s\t%v\n", id, metadata[id])
		}
		return nil
	})
	return cmd
}

// createOutput opens path for writing, adding a gzip layer for .gz paths.
// An empty path means stdout.
func createOutput(ctx context.Context, path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	w := out.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(w)
		return gz, func() error {
			if err := gz.Close(); err != nil {
				out.Close(ctx) // nolint: errcheck
				return err
			}
			return out.Close(ctx)
		}, nil
	}
	return w, func() error { return out.Close(ctx) }, nil
}

// trimOutputExt strips the final extension only, so "out.tsv.gz" yields a
// sidecar at "out.tsv.cnt".
func trimOutputExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-mutmerge",
			Short:    "Merge tumor mutation files across studies with model-sample and duplicate filtering",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdMerge(),
				newCmdMetadata(),
			},
		})
}
