package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulbdigitize/afs-digitizer/constants"
	"github.com/ulbdigitize/afs-digitizer/internal/common"
	"github.com/ulbdigitize/afs-digitizer/internal/jobstore"
)

const sampleDocument = `Balance Sheet as on 31 March 2024
Particulars  2023-24  2022-23
110010100 Fixed Assets Schedule B1  5,000.00  4,200.00
110020100 Current Assets  2,500.00  2,100.00
Total Assets  7,500.00  6,300.00
` + "\f" + `Schedule B1
Details of immovable property
Land  3,000.00
Buildings  2,000.00
` + "\f" + `Income and Expenditure Statement
Particulars  2023-24  2022-23
Total Income  4,000.00  3,600.00
Total Expenditure  3,000.00  2,900.00
Surplus for the year  1,000.00  700.00
` + "\f" + `Cash Flow Statement
Particulars  2023-24  2022-23
Cash at the beginning of the year  500.00  400.00
Net increase in cash  200.00  100.00
Cash at the end of the year  700.00  500.00
` + "\f" + `Independent Auditor's Report

In our opinion the statements give a true and fair view and we express an unmodified opinion.

Basis for Opinion paragraph follows here.
`

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	return &common.Config{
		Pipeline: common.PipelineConfig{
			OutputRoot:          t.TempDir(),
			MaxRetries:          1,
			ClassifierThreshold: 0.75,
			FuzzyThreshold:      0.86,
			ToleranceAbsolute:   1,
		},
		Entity: common.EntityConfig{ULBName: "Test Municipal Council", ULBCode: "TMC001", State: "Test State"},
		Units:  common.UnitsConfig{Currency: "INR", ReportedUnit: "INR"},
	}
}

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "afs_2023_24.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSubmitCompletesJob(t *testing.T) {
	cfg := testConfig(t)
	storeRoot := filepath.Join(cfg.Pipeline.OutputRoot, "job_store")
	store, err := jobstore.NewStore(storeRoot)
	require.NoError(t, err)
	runner := NewRunner(cfg, store, nil)

	env, err := runner.Submit(context.Background(), Request{SourcePath: writeSample(t, sampleDocument)})
	require.NoError(t, err)
	require.NotNil(t, env)

	assert.Equal(t, "1.0.0", env.SchemaVersion)
	assert.Equal(t, "Test Municipal Council", env.Entity.ULBName)
	require.Len(t, env.Job.SourceFiles, 1)
	assert.Equal(t, 5, env.Job.SourceFiles[0].PageCount)

	require.NotNil(t, env.Outputs.BalanceSheet)
	require.NotNil(t, env.Outputs.IncomeExpenditure)
	require.NotNil(t, env.Outputs.CashFlow)
	require.NotNil(t, env.Outputs.AuditReport)
	assert.Equal(t, "Unmodified Opinion", env.Outputs.AuditReport.Opinion)

	assert.Equal(t, []string{"FY2023-24", "FY2022-23"}, env.StatementPeriods)
	assert.Equal(t, constants.ValidationPassed, env.Validation.Status)
	assert.NotEmpty(t, env.Validation.Findings)

	require.Len(t, env.EvidenceIndex.ScheduleLinks.Linked, 1)
	assert.Equal(t, "B1", env.EvidenceIndex.ScheduleLinks.Linked[0].ScheduleID)
	assert.Empty(t, env.EvidenceIndex.ScheduleLinks.Unlinked)
	assert.NotEmpty(t, env.EvidenceIndex.AmountSamples)
	assert.Len(t, env.EvidenceIndex.PageMap, 5)

	record, err := store.Get(env.Job.JobID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusCompleted, record.Status)
	assert.Equal(t, 1, record.Attempts)

	// The completed record persists the full result alongside the
	// submission payload.
	result, ok := record.Payload["result"].(map[string]any)
	require.True(t, ok, "completed record payload carries the result envelope")
	assert.Equal(t, "1.0.0", result["schema_version"])
	outputs, ok := result["outputs"].(map[string]any)
	require.True(t, ok)
	assert.NotNil(t, outputs["balance_sheet"])

	metrics, err := store.ReadMetrics()
	require.NoError(t, err)
	assert.Equal(t, 1, metrics[constants.MetricSubmitted])
	assert.Equal(t, 1, metrics[constants.MetricSucceeded])
	assert.Zero(t, metrics[constants.MetricFailed])
	assert.Zero(t, metrics[constants.MetricRetried])

	outDir := filepath.Join(cfg.Pipeline.OutputRoot, env.Job.JobID)
	for _, name := range []string{"mapped_canonical.json", "validation_report.json", "digitized.xlsx", "job_log.jsonl"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	log, err := os.ReadFile(filepath.Join(outDir, "job_log.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "job.submitted")
	assert.Contains(t, string(log), "job.completed")
}

func TestSubmitRetriesThenDeadLetters(t *testing.T) {
	cfg := testConfig(t)
	storeRoot := filepath.Join(cfg.Pipeline.OutputRoot, "job_store")
	store, err := jobstore.NewStore(storeRoot)
	require.NoError(t, err)
	runner := NewRunner(cfg, store, nil)

	_, err = runner.Submit(context.Background(), Request{SourcePath: filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeProcessingFailure, appErr.Code)

	metrics, merr := store.ReadMetrics()
	require.NoError(t, merr)
	assert.Equal(t, 1, metrics[constants.MetricSubmitted])
	assert.Equal(t, 1, metrics[constants.MetricRetried])
	assert.Equal(t, 1, metrics[constants.MetricFailed])
	assert.Equal(t, 1, metrics[constants.MetricDLQ])
	assert.Zero(t, metrics[constants.MetricSucceeded])

	entries, derr := os.ReadDir(filepath.Join(storeRoot, "dlq"))
	require.NoError(t, derr)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))
}

func TestRunOnceFailsWhenArtifactsUnwritable(t *testing.T) {
	cfg := testConfig(t)
	store, err := jobstore.NewStore(filepath.Join(cfg.Pipeline.OutputRoot, "job_store"))
	require.NoError(t, err)
	runner := NewRunner(cfg, store, nil)

	// A regular file where the job directory should be makes every
	// artifact write fail; the attempt must fail with it so the retry
	// loop sees the error.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	outDir := filepath.Join(blocker, "job-1")

	createdAt := time.Now().UTC().Format(time.RFC3339)
	env, err := runner.runOnce(context.Background(), "job-1", createdAt, outDir, Request{SourcePath: writeSample(t, sampleDocument)})
	require.Error(t, err)
	assert.Nil(t, env)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeStoreError, appErr.Code)
}

func TestSubmitFlagsLowConfidencePages(t *testing.T) {
	cfg := testConfig(t)
	store, err := jobstore.NewStore(filepath.Join(cfg.Pipeline.OutputRoot, "job_store"))
	require.NoError(t, err)
	runner := NewRunner(cfg, store, nil)

	// A page with no statement keywords classifies as OTHER/ANNEXURE at
	// 0.5, below the review threshold.
	env, err := runner.Submit(context.Background(), Request{SourcePath: writeSample(t, "Annexure with miscellaneous notes 2024")})
	require.NoError(t, err)

	assert.True(t, env.RequiresManualReview)
	assert.Contains(t, env.ReviewReasons, "LOW_CLASSIFICATION_CONFIDENCE_PAGE_1")
	assert.Nil(t, env.Outputs.BalanceSheet)
	assert.Nil(t, env.Outputs.AuditReport)
}
