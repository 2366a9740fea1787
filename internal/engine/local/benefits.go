package local

import "github.com/shopspring/decimal"

// BENEFIT SCHEDULE ASSUMPTIONS:
//
// 1. Federal Poverty Guideline: 2024 values for the 48 contiguous states;
//    each household member above eight adds a fixed $5,380.
//
// 2. SNAP: gross income test at 130% FPG, 30% of monthly income counted
//    against the maximum monthly allotment. No deductions are modelled.
//
// 3. Medicaid: children covered below 200% FPG at an estimated $3,000/child
//    annual value; otherwise adults below 138% FPG (expansion states) at an
//    estimated $6,000. The coverage value is treated as cash.
//
// 4. EITC: phase-in, plateau and phase-out per child count with a higher
//    phase-out threshold for joint filers.
//
// 5. Premium Tax Credit: flat $5,000 benchmark premium against an expected
//    contribution tiered by income as a share of FPG, available between 100%
//    and 400% FPG and only when Medicaid does not apply.
//
// 6. CHIP and housing subsidies are not modelled and always evaluate to zero.

// 2024 federal poverty guidelines by household size.
var povertyGuidelines = map[int]int64{
	1: 15060, 2: 20440, 3: 25820, 4: 31200,
	5: 36580, 6: 41960, 7: 47340, 8: 52720,
}

const povertyGuidelineExtra = 5380

func povertyGuideline(size int) decimal.Decimal {
	if size < 1 {
		size = 1
	}
	if size <= 8 {
		return decimal.NewFromInt(povertyGuidelines[size])
	}
	return decimal.NewFromInt(povertyGuidelines[8] + int64(size-8)*povertyGuidelineExtra)
}

// Maximum monthly SNAP allotments by household size; each member above six
// adds $200.
var snapMaxMonthly = map[int]int64{1: 291, 2: 535, 3: 766, 4: 973, 5: 1155, 6: 1386}

func snapBenefit(income decimal.Decimal, size int) decimal.Decimal {
	grossLimit := povertyGuideline(size).Mul(decimal.NewFromFloat(1.3))
	if income.GreaterThan(grossLimit) {
		return decimal.Zero
	}

	allotment, ok := snapMaxMonthly[size]
	if !ok {
		allotment = snapMaxMonthly[6] + int64(size-6)*200
	}

	monthlyIncome := income.Div(decimal.NewFromInt(12))
	benefit := decimal.NewFromInt(allotment).Sub(monthlyIncome.Mul(decimal.NewFromFloat(0.3)))
	if benefit.IsNegative() {
		return decimal.Zero
	}
	return benefit.Mul(decimal.NewFromInt(12))
}

func medicaidValue(income decimal.Decimal, size, children int) decimal.Decimal {
	fpg := povertyGuideline(size)

	// Children are usually eligible up to 200% FPG.
	if children > 0 && income.LessThan(fpg.Mul(decimal.NewFromInt(2))) {
		return decimal.NewFromInt(int64(children) * 3000)
	}

	// Adults in expansion states up to 138% FPG.
	if income.LessThan(fpg.Mul(decimal.NewFromFloat(1.38))) {
		return decimal.NewFromInt(6000)
	}

	return decimal.Zero
}

// eitcSchedule holds the earned income credit parameters for one child count.
type eitcSchedule struct {
	MaxCredit       decimal.Decimal
	PhaseInRate     decimal.Decimal
	PlateauStart    decimal.Decimal
	PhaseOutMarried decimal.Decimal
	PhaseOutSingle  decimal.Decimal
	PhaseOutRate    decimal.Decimal
}

// Earned income credit parameters indexed by child count (0, 1, 2, 3+).
var eitcSchedules = []eitcSchedule{
	{
		MaxCredit:       decimal.NewFromInt(600),
		PhaseInRate:     decimal.NewFromFloat(0.0765),
		PlateauStart:    decimal.NewFromInt(7830),
		PhaseOutMarried: decimal.NewFromInt(17640),
		PhaseOutSingle:  decimal.NewFromInt(9800),
		PhaseOutRate:    decimal.NewFromFloat(0.0765),
	},
	{
		MaxCredit:       decimal.NewFromInt(3995),
		PhaseInRate:     decimal.NewFromFloat(0.34),
		PlateauStart:    decimal.NewFromInt(11750),
		PhaseOutMarried: decimal.NewFromInt(29550),
		PhaseOutSingle:  decimal.NewFromInt(22300),
		PhaseOutRate:    decimal.NewFromFloat(0.1598),
	},
	{
		MaxCredit:       decimal.NewFromInt(6604),
		PhaseInRate:     decimal.NewFromFloat(0.4),
		PlateauStart:    decimal.NewFromInt(16510),
		PhaseOutMarried: decimal.NewFromInt(29550),
		PhaseOutSingle:  decimal.NewFromInt(22300),
		PhaseOutRate:    decimal.NewFromFloat(0.2106),
	},
	{
		MaxCredit:       decimal.NewFromInt(7430),
		PhaseInRate:     decimal.NewFromFloat(0.45),
		PlateauStart:    decimal.NewFromInt(16510),
		PhaseOutMarried: decimal.NewFromInt(29550),
		PhaseOutSingle:  decimal.NewFromInt(22300),
		PhaseOutRate:    decimal.NewFromFloat(0.2106),
	},
}

func earnedIncomeCredit(income decimal.Decimal, children int, married bool) decimal.Decimal {
	idx := children
	if idx > 3 {
		idx = 3
	}
	s := eitcSchedules[idx]

	phaseOutStart := s.PhaseOutSingle
	if married {
		phaseOutStart = s.PhaseOutMarried
	}

	switch {
	case income.LessThanOrEqual(s.PlateauStart):
		return decimal.Min(income.Mul(s.PhaseInRate), s.MaxCredit)
	case income.LessThanOrEqual(phaseOutStart):
		return s.MaxCredit
	default:
		credit := s.MaxCredit.Sub(income.Sub(phaseOutStart).Mul(s.PhaseOutRate))
		if credit.IsNegative() {
			return decimal.Zero
		}
		return credit
	}
}

func childTaxCredit(children int) decimal.Decimal {
	return decimal.NewFromInt(int64(children) * 2000)
}

// wicBenefit estimates roughly $50/month per eligible young child; at most
// two children count as young.
func wicBenefit(income decimal.Decimal, size, children int) decimal.Decimal {
	if income.GreaterThan(povertyGuideline(size).Mul(decimal.NewFromFloat(1.85))) {
		return decimal.Zero
	}
	young := children
	if young > 2 {
		young = 2
	}
	return decimal.NewFromInt(int64(young) * 600)
}

func premiumTaxCredit(income decimal.Decimal, size int) decimal.Decimal {
	fpg := povertyGuideline(size)

	if income.LessThan(fpg) {
		return decimal.Zero // Medicaid territory
	}
	if income.GreaterThan(fpg.Mul(decimal.NewFromInt(4))) {
		return decimal.Zero // above 400% FPG
	}

	benchmarkPremium := decimal.NewFromInt(5000)

	fpgRatio := income.Div(fpg)
	var contributionRate decimal.Decimal
	switch {
	case fpgRatio.LessThanOrEqual(decimal.NewFromFloat(1.5)):
		contributionRate = decimal.NewFromFloat(0.02)
	case fpgRatio.LessThanOrEqual(decimal.NewFromInt(2)):
		contributionRate = decimal.NewFromFloat(0.04)
	case fpgRatio.LessThanOrEqual(decimal.NewFromFloat(2.5)):
		contributionRate = decimal.NewFromFloat(0.06)
	case fpgRatio.LessThanOrEqual(decimal.NewFromInt(3)):
		contributionRate = decimal.NewFromFloat(0.08)
	default:
		contributionRate = decimal.NewFromFloat(0.085)
	}

	credit := benchmarkPremium.Sub(income.Mul(contributionRate))
	if credit.IsNegative() {
		return decimal.Zero
	}
	return credit
}

func childcareCredit(children int) decimal.Decimal {
	if children <= 0 {
		return decimal.Zero
	}
	credit := int64(children) * 1000
	if credit > 3000 {
		credit = 3000
	}
	return decimal.NewFromInt(credit)
}

func marginalTaxRate(income decimal.Decimal) float64 {
	switch {
	case income.GreaterThan(decimal.NewFromInt(95376)):
		return 0.24
	case income.GreaterThan(decimal.NewFromInt(44726)):
		return 0.22
	default:
		return 0.12
	}
}
