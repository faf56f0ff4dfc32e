package types

// Categorical tags on an obligation. They are filterable metadata only and
// never participate in workflow decisions.

// Classification groups obligations by regulatory origin
type Classification string

const (
	ClassificationContractual Classification = "CONTRACTUAL"
	ClassificationRegulatory  Classification = "REGULATORY"
	ClassificationLegal       Classification = "LEGAL"
)

// IsValid checks if the classification is valid
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationContractual, ClassificationRegulatory, ClassificationLegal:
		return true
	default:
		return false
	}
}

// Periodicity describes how often an obligation recurs
type Periodicity string

const (
	PeriodicitySingle     Periodicity = "SINGLE"
	PeriodicityMonthly    Periodicity = "MONTHLY"
	PeriodicityQuarterly  Periodicity = "QUARTERLY"
	PeriodicitySemiannual Periodicity = "SEMIANNUAL"
	PeriodicityAnnual     Periodicity = "ANNUAL"
	PeriodicityEventual   Periodicity = "EVENTUAL"
)

// IsValid checks if the periodicity is valid
func (p Periodicity) IsValid() bool {
	switch p {
	case PeriodicitySingle, PeriodicityMonthly, PeriodicityQuarterly,
		PeriodicitySemiannual, PeriodicityAnnual, PeriodicityEventual:
		return true
	default:
		return false
	}
}

// Criticality ranks the consequence of missing an obligation
type Criticality string

const (
	CriticalityLow    Criticality = "LOW"
	CriticalityMedium Criticality = "MEDIUM"
	CriticalityHigh   Criticality = "HIGH"
)

// IsValid checks if the criticality is valid
func (c Criticality) IsValid() bool {
	switch c {
	case CriticalityLow, CriticalityMedium, CriticalityHigh:
		return true
	default:
		return false
	}
}

// Nature distinguishes reporting obligations from operational ones
type Nature string

const (
	NatureReporting   Nature = "REPORTING"
	NatureOperational Nature = "OPERATIONAL"
	NatureFinancial   Nature = "FINANCIAL"
)

// IsValid checks if the nature is valid
func (n Nature) IsValid() bool {
	switch n {
	case NatureReporting, NatureOperational, NatureFinancial:
		return true
	default:
		return false
	}
}
