// Package pipeline orchestrates the digitization stages for one job:
// extraction, classification, structuring, mapping, linking, audit
// parsing, validation, and envelope assembly, with retry and
// dead-letter handling around the whole attempt.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ulbdigitize/afs-digitizer/constants"
	"github.com/ulbdigitize/afs-digitizer/internal/audit"
	"github.com/ulbdigitize/afs-digitizer/internal/classify"
	"github.com/ulbdigitize/afs-digitizer/internal/common"
	"github.com/ulbdigitize/afs-digitizer/internal/entity"
	"github.com/ulbdigitize/afs-digitizer/internal/export"
	"github.com/ulbdigitize/afs-digitizer/internal/extract"
	"github.com/ulbdigitize/afs-digitizer/internal/jobstore"
	"github.com/ulbdigitize/afs-digitizer/internal/linker"
	"github.com/ulbdigitize/afs-digitizer/internal/mapper"
	"github.com/ulbdigitize/afs-digitizer/internal/schema"
	"github.com/ulbdigitize/afs-digitizer/internal/tables"
	"github.com/ulbdigitize/afs-digitizer/internal/validate"
)

// Request is one digitization job submission: a page-dump text file
// (pages split on form feed) plus optional pre-parsed grids from the
// extraction collaborator.
type Request struct {
	SourcePath string
	Grids      []tables.Grid
}

// Runner coordinates the stages and owns the retry/DLQ policy.
type Runner struct {
	logger      *slog.Logger
	cfg         *common.Config
	store       *jobstore.Store
	classifier  *classify.Classifier
	mapper      *mapper.Mapper
	linker      *linker.Linker
	auditParser *audit.Parser
	validator   *validate.FinancialValidator
	exporter    *export.Service
	schemaMap   map[string]any
}

func NewRunner(cfg *common.Config, store *jobstore.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:      logger,
		cfg:         cfg,
		store:       store,
		classifier:  classify.NewClassifier(classify.DefaultRules, cfg.Pipeline.ClassifierThreshold),
		mapper:      mapper.NewMapper(mapper.DefaultTaxonomy, cfg.Pipeline.FuzzyThreshold),
		linker:      linker.NewLinker(),
		auditParser: audit.NewParser(),
		validator:   validate.NewFinancialValidator(cfg.Pipeline.ToleranceAbsolute),
		exporter:    export.NewService(logger),
		schemaMap:   schema.BuildEnvelopeSchema(),
	}
}

// Submit runs one job to completion: up to MaxRetries+1 attempts, each
// a full pass over the document. Terminal failure moves the job record
// to the dead-letter queue and returns the last attempt's error.
func (r *Runner) Submit(ctx context.Context, req Request) (*entity.Envelope, error) {
	jobID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)
	outDir := filepath.Join(r.cfg.Pipeline.OutputRoot, jobID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, common.NewAppError(common.CodeStoreError, "create job output dir", err)
	}

	record := jobstore.JobRecord{
		JobID:   jobID,
		Status:  constants.JobStatusSubmitted,
		Payload: map[string]any{"source_path": req.SourcePath},
	}
	if err := r.store.Upsert(record); err != nil {
		return nil, err
	}
	if err := r.store.BumpMetric(constants.MetricSubmitted, 1); err != nil {
		return nil, err
	}
	r.logger.Info("runner.job.submitted", "job_id", jobID, "source", req.SourcePath)
	r.appendEvent(outDir, jobID, "job.submitted", map[string]any{"source": req.SourcePath})

	maxAttempts := r.cfg.Pipeline.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		env, err := r.runOnce(ctx, jobID, createdAt, outDir, req)
		if err == nil {
			record.Status = constants.JobStatusCompleted
			record.Attempts = attempt
			record.Error = ""
			// The completed record carries the full result, not just the
			// submission payload.
			record.Payload = map[string]any{
				"source_path": req.SourcePath,
				"result":      env,
			}
			if err := r.store.Upsert(record); err != nil {
				return nil, err
			}
			if err := r.store.BumpMetric(constants.MetricSucceeded, 1); err != nil {
				return nil, err
			}
			r.appendEvent(outDir, jobID, "attempt.succeeded", map[string]any{"attempt": attempt})
			r.logger.Info("runner.job.completed", "job_id", jobID, "attempts", attempt)
			r.appendEvent(outDir, jobID, "job.completed", map[string]any{"attempts": attempt})
			return env, nil
		}

		lastErr = err
		record.Attempts = attempt
		record.Error = err.Error()
		r.logger.Error("runner.attempt.failed", "job_id", jobID, "attempt", attempt, "err", err)
		r.appendEvent(outDir, jobID, "attempt.failed", map[string]any{"attempt": attempt, "error": err.Error()})

		if attempt < maxAttempts {
			record.Status = constants.JobStatusRetrying
			if err := r.store.Upsert(record); err != nil {
				return nil, err
			}
			if err := r.store.BumpMetric(constants.MetricRetried, 1); err != nil {
				return nil, err
			}
		}
	}

	record.Status = constants.JobStatusFailed
	if err := r.store.Upsert(record); err != nil {
		return nil, err
	}
	if err := r.store.BumpMetric(constants.MetricFailed, 1); err != nil {
		return nil, err
	}
	if err := r.store.MoveToDLQ(record); err != nil {
		return nil, err
	}
	r.logger.Error("runner.job.failed", "job_id", jobID, "attempts", maxAttempts, "err", lastErr)
	r.appendEvent(outDir, jobID, "job.failed", map[string]any{"attempts": maxAttempts, "error": lastErr.Error()})
	return nil, lastErr
}

// runOnce is one full attempt: every stage, envelope assembly,
// structural validation of the result, and the per-job artifacts. An
// artifact write failure fails the attempt, so it is retried and
// ultimately dead-lettered like any other stage failure.
func (r *Runner) runOnce(ctx context.Context, jobID, createdAt, outDir string, req Request) (*entity.Envelope, error) {
	rawPages, err := extract.ReadPageDump(req.SourcePath)
	if err != nil {
		return nil, common.NewAppError(common.CodeProcessingFailure, "read source file", err)
	}
	blocks := extract.TextBlocks(rawPages)
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}

	sourceFile, err := extract.Fingerprint(req.SourcePath, len(texts))
	if err != nil {
		return nil, common.NewAppError(common.CodeProcessingFailure, "fingerprint source file", err)
	}

	doc := r.classifier.ClassifyDocument(texts)

	statements := make(map[string]*tables.Statement, len(statementSections))
	for _, sec := range statementSections {
		statements[sec.Key] = buildStatement(doc, sec.Section, texts, req.Grids)
	}

	var auditReport *audit.Report
	auditReasons := []string{}
	if auditText := joinSectionText(doc, constants.SectionAuditReport, texts); auditText != "" {
		report := r.auditParser.Parse(auditText)
		auditReport = &report
		auditReasons = report.ReviewReasons
	}

	findings := runChecks(r.validator, statements["balance_sheet"], statements["income_expenditure"], statements["cash_flow"])
	summary := validate.Summarize(findings)

	items := lineItems(statements)
	links := r.linker.Link(items, deriveScheduleIndex(doc, texts))

	mappingSamples := []mapper.Resolution{}
	for _, item := range items {
		if len(mappingSamples) >= maxMappingSamples {
			break
		}
		mappingSamples = append(mappingSamples, r.mapper.Resolve(item))
	}

	env := &entity.Envelope{
		SchemaVersion: schema.SchemaVersion,
		Job: entity.JobMeta{
			JobID:       jobID,
			SourceFiles: []extract.SourceFile{sourceFile},
			CreatedAt:   createdAt,
			ProcessedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Entity: entity.EntityMeta{
			ULBName: r.cfg.Entity.ULBName,
			ULBCode: r.cfg.Entity.ULBCode,
			State:   r.cfg.Entity.State,
		},
		StatementPeriods: derivePeriods(statements),
		SourceUnits: entity.UnitsMeta{
			Currency:     r.cfg.Units.Currency,
			ReportedUnit: r.cfg.Units.ReportedUnit,
		},
		Outputs: entity.Outputs{
			BalanceSheet:      statements["balance_sheet"],
			IncomeExpenditure: statements["income_expenditure"],
			CashFlow:          statements["cash_flow"],
			AuditReport:       auditReport,
		},
		Confidence: confidenceMeta(doc, statements, auditReport != nil),
		Validation: summary,
		RequiresManualReview: doc.RequiresManualReview || summary.RequiresManualReview ||
			links.RequiresManualReview || (auditReport != nil && auditReport.RequiresManualReview),
		ReviewReasons: mergeReviewReasons(doc, summary.ReviewReasons, links, auditReasons),
		EvidenceIndex: entity.EvidenceIndex{
			AmountSamples:  sampleAmounts(statements),
			PageMap:        doc.PageMap,
			Tables:         tables.Reconstruct(req.Grids, texts),
			ScheduleLinks:  links,
			AuditEvidence:  auditEvidence(auditReport),
			MappingSamples: mappingSamples,
		},
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return nil, common.NewAppError(common.CodeProcessingFailure, "marshal envelope", err)
	}
	violations, err := schema.Validate(r.schemaMap, payload)
	if err != nil {
		return nil, common.NewAppError(common.CodeProcessingFailure, "validate envelope", err)
	}
	if len(violations) > 0 {
		r.logger.Error("runner.envelope.invalid", "job_id", jobID, "violations", violations)
		return nil, common.NewAppError(common.CodeProcessingFailure,
			fmt.Sprintf("envelope failed structural validation (%d violations)", len(violations)), common.ErrValidation)
	}

	if err := r.writeArtifacts(ctx, outDir, env); err != nil {
		return nil, err
	}
	return env, nil
}

func joinSectionText(doc classify.Document, section constants.Section, texts []string) string {
	var parts []string
	for _, page := range sectionPages(doc, section) {
		if t := strings.TrimSpace(texts[page-1]); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func auditEvidence(report *audit.Report) []audit.EvidenceBlock {
	if report == nil {
		return []audit.EvidenceBlock{}
	}
	return report.EvidenceBlocks
}

// writeArtifacts persists the per-job outputs: the canonical envelope,
// the validation report, and the digitized workbook.
func (r *Runner) writeArtifacts(ctx context.Context, outDir string, env *entity.Envelope) error {
	if err := writeJSONFile(filepath.Join(outDir, "mapped_canonical.json"), env); err != nil {
		return common.NewAppError(common.CodeStoreError, "write canonical envelope", err)
	}
	if err := writeJSONFile(filepath.Join(outDir, "validation_report.json"), env.Validation); err != nil {
		return common.NewAppError(common.CodeStoreError, "write validation report", err)
	}

	sheets := map[string]*tables.Statement{}
	for _, sec := range statementSections {
		switch sec.Key {
		case "balance_sheet":
			sheets[sec.Sheet] = env.Outputs.BalanceSheet
		case "income_expenditure":
			sheets[sec.Sheet] = env.Outputs.IncomeExpenditure
		case "cash_flow":
			sheets[sec.Sheet] = env.Outputs.CashFlow
		}
	}
	hasStatement := false
	for _, st := range sheets {
		if st != nil {
			hasStatement = true
		}
	}
	if hasStatement {
		workbook, err := r.exporter.ExportStatementsXLSX(ctx, env.Job.JobID, sheets)
		if err != nil {
			return common.NewAppError(common.CodeProcessingFailure, "export workbook", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "digitized.xlsx"), workbook, 0o644); err != nil {
			return common.NewAppError(common.CodeStoreError, "write workbook", err)
		}
	}
	return nil
}

// appendEvent adds one line to the job's append-only event log. Event
// logging never fails the job; a write error is only logged.
func (r *Runner) appendEvent(outDir, jobID, event string, fields map[string]any) {
	line := map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339),
		"event":  event,
		"job_id": jobID,
	}
	for k, v := range fields {
		line[k] = v
	}
	b, err := json.Marshal(line)
	if err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(outDir, "job_log.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Warn("runner.eventlog.open_failed", "job_id", jobID, "err", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		r.logger.Warn("runner.eventlog.write_failed", "job_id", jobID, "err", err)
	}
}

func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
