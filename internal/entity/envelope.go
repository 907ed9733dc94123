// Package entity declares the canonical output envelope and its
// sub-documents. Field names and JSON tags are the downstream contract;
// changing either is a schema version bump.
package entity

import (
	"github.com/ulbdigitize/afs-digitizer/internal/audit"
	"github.com/ulbdigitize/afs-digitizer/internal/classify"
	"github.com/ulbdigitize/afs-digitizer/internal/extract"
	"github.com/ulbdigitize/afs-digitizer/internal/linker"
	"github.com/ulbdigitize/afs-digitizer/internal/mapper"
	"github.com/ulbdigitize/afs-digitizer/internal/numeric"
	"github.com/ulbdigitize/afs-digitizer/internal/tables"
	"github.com/ulbdigitize/afs-digitizer/internal/validate"
)

// Envelope is the single canonical result document for one job.
type Envelope struct {
	SchemaVersion        string           `json:"schema_version"`
	Job                  JobMeta          `json:"job"`
	Entity               EntityMeta       `json:"entity"`
	StatementPeriods     []string         `json:"statement_periods"`
	SourceUnits          UnitsMeta        `json:"source_units"`
	Outputs              Outputs          `json:"outputs"`
	Confidence           ConfidenceMeta   `json:"confidence"`
	Validation           validate.Summary `json:"validation"`
	RequiresManualReview bool             `json:"requires_manual_review"`
	ReviewReasons        []string         `json:"review_reasons"`
	EvidenceIndex        EvidenceIndex    `json:"evidence_index"`
}

// JobMeta identifies the job and its source files. Timestamps are
// ISO-8601 UTC.
type JobMeta struct {
	JobID       string               `json:"job_id"`
	SourceFiles []extract.SourceFile `json:"source_files"`
	CreatedAt   string               `json:"created_at"`
	ProcessedAt string               `json:"processed_at"`
}

// EntityMeta identifies the reporting urban local body.
type EntityMeta struct {
	ULBName string `json:"ulb_name"`
	ULBCode string `json:"ulb_code"`
	State   string `json:"state"`
}

// UnitsMeta records the currency and magnitude unit the source reports
// amounts in. Amounts are never rescaled.
type UnitsMeta struct {
	Currency     string `json:"currency"`
	ReportedUnit string `json:"reported_unit"`
}

// Outputs holds the structured statements. A statement the document
// does not carry is null, never an empty object.
type Outputs struct {
	BalanceSheet      *tables.Statement `json:"balance_sheet"`
	IncomeExpenditure *tables.Statement `json:"income_expenditure"`
	CashFlow          *tables.Statement `json:"cash_flow"`
	AuditReport       *audit.Report     `json:"audit_report"`
}

// ConfidenceMeta aggregates stage confidences.
type ConfidenceMeta struct {
	Overall     float64            `json:"overall"`
	ByStatement map[string]float64 `json:"by_statement"`
}

// EvidenceIndex points every extracted fact back at its source.
type EvidenceIndex struct {
	AmountSamples  []numeric.ParsedAmount        `json:"amount_samples"`
	PageMap        []classify.PageClassification `json:"page_map"`
	Tables         []tables.Table                `json:"tables"`
	ScheduleLinks  linker.Result                 `json:"schedule_links"`
	AuditEvidence  []audit.EvidenceBlock         `json:"audit_evidence"`
	MappingSamples []mapper.Resolution           `json:"mapping_samples"`
}
