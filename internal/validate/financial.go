// Package validate runs tolerance-based arithmetic consistency checks
// over extracted statement totals.
package validate

import (
	"math"

	"github.com/ulbdigitize/afs-digitizer/constants"
)

// Rule names for the standard checks.
const (
	RuleBalanceSheet      = "BS_BALANCE"
	RuleCashFlow          = "CF_BALANCE"
	RuleIncomeExpenditure = "IE_SURPLUS"
	RuleCrossfoot         = "CROSSFOOT"
)

// Finding is the outcome of one arithmetic check. Status is strictly a
// function of |variance| against the tolerance.
type Finding struct {
	Status    constants.ValidationStatus `json:"validation_status"`
	Rule      string                     `json:"rule"`
	Expected  float64                    `json:"expected"`
	Actual    float64                    `json:"actual"`
	Variance  float64                    `json:"variance"`
	Tolerance float64                    `json:"tolerance"`
	Severity  constants.Severity         `json:"severity"`
	Message   string                     `json:"message"`
}

// Summary aggregates findings: FAILED if any finding failed, with the
// failed rule names as review reasons.
type Summary struct {
	Status               constants.ValidationStatus `json:"validation_status"`
	Findings             []Finding                  `json:"findings"`
	RequiresManualReview bool                       `json:"requires_manual_review"`
	ReviewReasons        []string                   `json:"review_reasons"`
}

// FinancialValidator applies one absolute tolerance to every rule.
type FinancialValidator struct {
	tolerance float64
}

// DefaultTolerance is one currency unit.
const DefaultTolerance = 1.0

func NewFinancialValidator(tolerance float64) *FinancialValidator {
	return &FinancialValidator{tolerance: tolerance}
}

func (v *FinancialValidator) makeFinding(rule string, expected, actual float64, severity constants.Severity) Finding {
	variance := actual - expected
	status := constants.ValidationPassed
	message := rule + " ok"
	if math.Abs(variance) > v.tolerance {
		status = constants.ValidationFailed
		message = rule + " mismatch"
	}
	return Finding{
		Status:    status,
		Rule:      rule,
		Expected:  expected,
		Actual:    actual,
		Variance:  variance,
		Tolerance: v.tolerance,
		Severity:  severity,
		Message:   message,
	}
}

// CheckBalanceSheet verifies total assets equal total equity and
// liabilities.
func (v *FinancialValidator) CheckBalanceSheet(totalAssets, totalEquityLiabilities float64) Finding {
	return v.makeFinding(RuleBalanceSheet, totalAssets, totalEquityLiabilities, constants.SeverityHigh)
}

// CheckCashFlow verifies opening balance plus net change equals the
// closing balance.
func (v *FinancialValidator) CheckCashFlow(opening, netChange, closing float64) Finding {
	return v.makeFinding(RuleCashFlow, opening+netChange, closing, constants.SeverityHigh)
}

// CheckIncomeExpenditure verifies revenue plus other income minus
// expenditure equals the reported surplus.
func (v *FinancialValidator) CheckIncomeExpenditure(revenue, otherIncome, expenditure, surplus float64) Finding {
	return v.makeFinding(RuleIncomeExpenditure, (revenue+otherIncome)-expenditure, surplus, constants.SeverityHigh)
}

// CheckCrossfoot verifies a caller-named parent total against the sum
// of its children.
func (v *FinancialValidator) CheckCrossfoot(rule string, parentTotal, childSum float64) Finding {
	if rule == "" {
		rule = RuleCrossfoot
	}
	return v.makeFinding(rule, parentTotal, childSum, constants.SeverityMedium)
}

// Summarize folds findings into the document-level validation summary.
func Summarize(findings []Finding) Summary {
	summary := Summary{
		Status:        constants.ValidationPassed,
		Findings:      findings,
		ReviewReasons: []string{},
	}
	for _, f := range findings {
		if f.Status == constants.ValidationFailed {
			summary.Status = constants.ValidationFailed
			summary.RequiresManualReview = true
			summary.ReviewReasons = append(summary.ReviewReasons, f.Rule)
		}
	}
	return summary
}
