package mutmerge

import (
	"bytes"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mutationHeader = "Hugo_Symbol\tVariant_Type\tConsequence\tHGVSp\tTumor_Sample_Barcode\n"

func runMergeTest(t *testing.T, root string, modelSamples map[string]struct{}, opts Opts) (*Merger, []Record) {
	m := NewMerger(modelSamples, opts)
	var got []Record
	require.NoError(t, m.Run(vcontext.Background(), root, func(r Record) error {
		got = append(got, r)
		return nil
	}))
	return m, got
}

func TestMergeFiltersModelAndDuplicates(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	writeMutationFile(t, tempDir, "proj_a", "data_mutations.txt",
		mutationHeader+
			"TP53\tSNP\tmissense_variant\tp.R175H\tSAMPLE001\n"+
			"KRAS\tSNP\tmissense_variant\tp.G12D\tSAMPLE002\n"+
			"EGFR\tSNP\tmissense_variant\tp.L858R\tSAMPLE003\n")
	writeMutationFile(t, tempDir, "proj_b", "data_mutations.txt",
		mutationHeader+
			"BRAF\tSNP\tmissense_variant\tp.V600E\tSAMPLE001\n"+
			"PTEN\tSNP\tstop_gained\tp.R130*\tSAMPLE009\n")

	m, got := runMergeTest(t, tempDir, modelSet("SAMPLE002"), DefaultOpts)

	// SAMPLE002 is a model sample; SAMPLE001 in proj_b repeats proj_a.
	require.Len(t, got, 3)
	assert.Equal(t, Record{Project: "proj_a", Gene: "TP53", Sample: "SAMPLE001",
		VariantType: "SNP", HGVSp: "p.R175H", FrameshiftLen: "0"}, got[0])
	assert.Equal(t, "SAMPLE003", got[1].Sample)
	assert.Equal(t, Record{Project: "proj_b", Gene: "PTEN", Sample: "SAMPLE009",
		VariantType: "SNP", HGVSp: "p.R130*", FrameshiftLen: "0"}, got[2])

	project, ok := m.Filter().Tracker().FirstProject("SAMPLE001")
	assert.True(t, ok)
	assert.Equal(t, "proj_a", project)

	statsA := m.Stats().Get("proj_a")
	assert.Equal(t, 2, statsA.RowsAccepted)
	assert.Equal(t, 1, statsA.RowsRejected)
	statsB := m.Stats().Get("proj_b")
	assert.Equal(t, 1, statsB.RowsAccepted)
	assert.Equal(t, 1, statsB.RowsDuplicate)
}

func TestMergeSkipsModelStudyByPath(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	writeMutationFile(t, tempDir, "ccle", "data_mutations.txt",
		mutationHeader+"TP53\tSNP\tmissense_variant\tp.R175H\tCCLE-1\n")
	writeMutationFile(t, tempDir, "pdx-breast", "data_mutations.txt",
		mutationHeader+"EGFR\tSNP\tmissense_variant\tp.L858R\tPDX-1\n")
	writeMutationFile(t, tempDir, "proj_a", "data_mutations.txt",
		mutationHeader+"KRAS\tSNP\tmissense_variant\tp.G12D\tSAMPLE001\n")

	_, got := runMergeTest(t, tempDir, nil, DefaultOpts)
	require.Len(t, got, 1)
	assert.Equal(t, "proj_a", got[0].Project)
}

func TestMergeKeepsStudyContainingPatternWord(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// "brca_latest" contains "test" inside a larger word; only whole-word
	// matches screen a study, so this one merges normally.
	writeMutationFile(t, tempDir, "brca_latest", "data_mutations.txt",
		mutationHeader+"TP53\tSNP\tmissense_variant\tp.R175H\tSAMPLE001\n")

	_, got := runMergeTest(t, tempDir, nil, DefaultOpts)
	require.Len(t, got, 1)
	assert.Equal(t, "brca_latest", got[0].Project)
	assert.Equal(t, "SAMPLE001", got[0].Sample)
}

func TestMergeSkipsEntirelyModelFile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	writeMutationFile(t, tempDir, "proj_a", "data_mutations.txt",
		mutationHeader+
			"TP53\tSNP\tmissense_variant\tp.R175H\tMODEL1\n"+
			"KRAS\tSNP\tmissense_variant\tp.G12D\tMODEL2\n")
	writeMutationFile(t, tempDir, "proj_b", "data_mutations.txt",
		mutationHeader+
			"TP53\tSNP\tmissense_variant\tp.R175H\tMODEL1\n"+
			"KRAS\tSNP\tmissense_variant\tp.G12D\tSAMPLE001\n")

	m, got := runMergeTest(t, tempDir, modelSet("MODEL1", "MODEL2"), DefaultOpts)

	// proj_a is skipped whole: no rows, no stats entry.
	require.Len(t, got, 1)
	assert.Equal(t, "SAMPLE001", got[0].Sample)
	assert.Equal(t, []string{"proj_b"}, m.Stats().Projects())
}

func TestMergeSkipsDuplicateStudy(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// Same study+center UID under two names: only the first sorted path
	// contributes.
	writeMutationFile(t, tempDir, "brca_tcga", "data_mutations.txt",
		mutationHeader+"TP53\tSNP\tmissense_variant\tp.R175H\tS1\n")
	writeMutationFile(t, tempDir, "brca_tcga_pub2015", "data_mutations.txt",
		mutationHeader+"KRAS\tSNP\tmissense_variant\tp.G12D\tS2\n")

	_, got := runMergeTest(t, tempDir, nil, DefaultOpts)
	require.Len(t, got, 1)
	assert.Equal(t, "brca_tcga", got[0].Project)
}

func TestMergeIncludeModel(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	writeMutationFile(t, tempDir, "ccle", "data_mutations.txt",
		mutationHeader+"TP53\tSNP\tmissense_variant\tp.R175H\tMODEL1\n")

	opts := DefaultOpts
	opts.IncludeModel = true
	_, got := runMergeTest(t, tempDir, modelSet("MODEL1"), opts)
	require.Len(t, got, 1)
	assert.Equal(t, "MODEL1", got[0].Sample)
}

func TestMergeVariantRewrites(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	writeMutationFile(t, tempDir, "proj_a", "data_mutations.txt",
		mutationHeader+
			"ERBB2\tINS\tinframe_insertion\tp.Y772_A775dup\tS1\n"+
			"TP53\tDEL\tframeshift_variant\tp.Lys117AsnfsTer6\tS2\n")

	_, got := runMergeTest(t, tempDir, nil, DefaultOpts)
	require.Len(t, got, 2)

	// Inframe indels are reported as SNP.
	assert.Equal(t, "SNP", got[0].VariantType)
	assert.Equal(t, "", got[0].FrameshiftStart)
	assert.Equal(t, "0", got[0].FrameshiftLen)

	assert.Equal(t, "DEL", got[1].VariantType)
	assert.Equal(t, "117", got[1].FrameshiftStart)
	assert.Equal(t, "6", got[1].FrameshiftLen)
}

func TestMergeSkipsMalformedFiles(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// No HGVSp column: the file is skipped, not fatal.
	writeMutationFile(t, tempDir, "proj_a", "data_mutations.txt",
		"Hugo_Symbol\tTumor_Sample_Barcode\nTP53\tS1\n")
	// Empty file.
	writeMutationFile(t, tempDir, "proj_b", "data_mutations.txt", "")
	// Comment and blank lines are ignored within a good file.
	writeMutationFile(t, tempDir, "proj_c", "data_mutations.txt",
		"#version 2.4\n"+
			mutationHeader+
			"\n"+
			"#comment\n"+
			"TP53\tSNP\tmissense_variant\tp.R175H\tS1\n")

	_, got := runMergeTest(t, tempDir, nil, DefaultOpts)
	require.Len(t, got, 1)
	assert.Equal(t, "proj_c", got[0].Project)
}

func TestWriteGeneCounts(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	writeMutationFile(t, tempDir, "proj_a", "data_mutations.txt",
		mutationHeader+
			"TP53\tSNP\tmissense_variant\tp.R175H\tS1\n"+
			"KRAS\tSNP\tmissense_variant\tp.G12D\tS2\n"+
			"TP53\tSNP\tmissense_variant\tp.R273C\tS3\n")

	m, _ := runMergeTest(t, tempDir, nil, DefaultOpts)
	var buf bytes.Buffer
	require.NoError(t, m.WriteGeneCounts(&buf))
	assert.Equal(t, "KRAS\t1\nTP53\t2\n", buf.String())
}

func TestRecordWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf)
	require.NoError(t, w.Write(Record{
		Project: "proj_a", Gene: "TP53", Sample: "S1",
		VariantType: "DEL", HGVSp: "p.Lys117AsnfsTer6",
		FrameshiftStart: "117", FrameshiftLen: "6",
	}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "proj_a\tTP53\tS1\tDEL\tp.Lys117AsnfsTer6\t117\t6\n", buf.String())
}
