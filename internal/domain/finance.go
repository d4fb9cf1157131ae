package domain

// CostAssumptions holds the per-asset financing and cost inputs consumed by
// the project-finance layer. Monetary values are in $M; rates are fractions.
type CostAssumptions struct {
	Capex              float64     `json:"capex"`                   // $M total construction cost
	OperatingCosts     float64     `json:"operatingCosts"`          // $M/yr at COD
	OpexEscalation     float64     `json:"operatingCostEscalation"` // %/yr
	MaxGearing         float64     `json:"maxGearing"`              // fraction, ceiling for sculpted debt
	InterestRate       float64     `json:"interestRate"`            // fraction, flat
	TenorYears         int         `json:"tenorYears"`
	TargetDSCRContract float64     `json:"targetDSCRContract"` // target while revenue is contracted
	TargetDSCRMerchant float64     `json:"targetDSCRMerchant"` // target for merchant-exposed revenue
	TerminalValue      float64     `json:"terminalValue"`      // $M added to the final equity flow
	DiscountRate       float64     `json:"discountRate"`       // fraction, equity NPV discounting
	Funding            FundingMode `json:"fundingMode,omitempty"`
}

// FundingMode selects how construction drawdowns split between equity and
// debt.
type FundingMode string

const (
	// FundingEquityFirst spends the full equity commitment before drawing
	// any debt. Standard for project-financed construction.
	FundingEquityFirst FundingMode = "equity_first"
	// FundingPariPassu draws equity and debt proportionally each period.
	FundingPariPassu FundingMode = "pari_passu"
)

// CapexDrawdown is one construction period's spend, split by funding source.
// Values in $M.
type CapexDrawdown struct {
	Year   int     `json:"year"`
	Total  float64 `json:"total"`
	Equity float64 `json:"equity"`
	Debt   float64 `json:"debt"`
}

// DefaultCostAssumptions returns conservative assumptions for assets with no
// cost data configured. Missing cost data is a fallback condition, not an error.
func DefaultCostAssumptions() CostAssumptions {
	return CostAssumptions{
		MaxGearing:         0.70,
		InterestRate:       0.055,
		TenorYears:         18,
		TargetDSCRContract: 1.35,
		TargetDSCRMerchant: 2.00,
		DiscountRate:       0.08,
	}
}

// DebtPeriod is one row of a sculpted amortization schedule. Values in $M.
type DebtPeriod struct {
	Label          string  `json:"label"`
	OpeningBalance float64 `json:"openingBalance"`
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	DebtService    float64 `json:"debtService"`
	ClosingBalance float64 `json:"closingBalance"`
	CFADS          float64 `json:"cfads"`
	TargetDSCR     float64 `json:"targetDSCR"`
	DSCR           float64 `json:"dscr"` // realized; 0 when no debt service falls due
	Grace          bool    `json:"grace"` // partial first period, no amortization
}

// DebtSchedule is the full amortization profile for one sculpted debt amount.
// FullyRepaid must hold for any gearing level reported as feasible.
type DebtSchedule struct {
	Periods      []DebtPeriod `json:"periods"`
	FullyRepaid  bool         `json:"fullyRepaid"`
	MinDSCR      float64      `json:"minDSCR"`
	GracePeriods int          `json:"gracePeriods"`
}

// FinanceResult carries the project-finance outcome for one asset or for the
// portfolio aggregate.
type FinanceResult struct {
	AssetName string `json:"assetName"`

	// Capital structure, $M.
	Capex        float64 `json:"capex"`
	DebtAmount   float64 `json:"debtAmount"`
	Gearing      float64 `json:"gearing"` // DebtAmount / Capex
	EquityAmount float64 `json:"equityAmount"`

	Schedule       DebtSchedule `json:"debtSchedule"`
	AvgDebtService float64      `json:"avgDebtService"`
	MinDSCR        float64      `json:"minDSCR"`

	// Construction drawdowns, one per construction year. Empty for the
	// portfolio aggregate, which has no single construction window.
	CapexSchedule []CapexDrawdown `json:"capexSchedule,omitempty"`

	// Equity cash-flow vector: initial equity outflow followed by one
	// post-debt-service flow per period, terminal value in the last entry.
	EquityCashFlows []float64 `json:"equityCashFlows"`

	// Derived returns. Nil means the solver reported "undetermined".
	EquityIRR  *float64 `json:"equityIRR"`
	EquityNPV  float64  `json:"equityNPV"`
	ProjectIRR *float64 `json:"projectIRR"`
	// PaybackPeriod is the 0-based index at which cumulative equity flows
	// turn positive; -1 when they never do.
	PaybackPeriod int     `json:"paybackPeriod"`
	AvgROE        float64 `json:"avgROE"`
}
