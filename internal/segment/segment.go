//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package segment holds the rule-based classifications used by the reports
// and reporting views: customer segments, product performance tiers, cost
// ranges and age groups.
//
// Every rule exists twice: as a Go function that classifies a single value,
// and as a generator for the equivalent SQL CASE expression. Reports and views
// always use the generated SQL so that both forms share the same thresholds.
package segment

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Customer segment labels.
const (
	VIP     = "VIP"
	Regular = "Regular"
	New     = "New"
)

// Product tier labels.
const (
	HighPerformer = "High-Performer"
	MidRange      = "Mid-Range"
	LowPerformer  = "Low-Performer"
)

// Age group labels.
const (
	AgeUnder20   = "Under 20"
	Age20To29    = "20-29"
	Age30To39    = "30-39"
	Age40To49    = "40-49"
	Age50AndOver = "50 and above"
	AgeUnknown   = "Unknown"
)

// Thresholds configures the segmentation rules.
type Thresholds struct {
	// VIPMinSpend is the spend a long-standing customer must exceed to be VIP.
	VIPMinSpend float64 `mapstructure:"vip_min_spend" json:"vip_min_spend" validate:"gt=0"`

	// VIPMinLifespanMonths is the minimum months between first and last
	// order for a customer to leave the New segment.
	VIPMinLifespanMonths int `mapstructure:"vip_min_lifespan_months" json:"vip_min_lifespan_months" validate:"gte=1"`

	// HighPerformerSales is the total sales a product must exceed to be a
	// High-Performer.
	HighPerformerSales float64 `mapstructure:"high_performer_sales" json:"high_performer_sales" validate:"gt=0"`

	// MidRangeSales is the minimum total sales for a Mid-Range product.
	MidRangeSales float64 `mapstructure:"mid_range_sales" json:"mid_range_sales" validate:"gt=0"`

	// CostBounds are the ascending upper bounds of the product cost ranges.
	CostBounds []float64 `mapstructure:"cost_bounds" json:"cost_bounds" validate:"min=1,dive,gt=0"`
}

// DefaultThresholds returns the standard segmentation thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VIPMinSpend:          5000,
		VIPMinLifespanMonths: 12,
		HighPerformerSales:   50000,
		MidRangeSales:        10000,
		CostBounds:           []float64{100, 500, 1000},
	}
}

// IsZero reports whether no thresholds have been set.
func (t Thresholds) IsZero() bool {
	return t.VIPMinSpend == 0 && t.VIPMinLifespanMonths == 0 &&
		t.HighPerformerSales == 0 && t.MidRangeSales == 0 && len(t.CostBounds) == 0
}

var validate = validator.New()

// Validate checks field constraints and the ordering between thresholds.
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid segment thresholds: %w", err)
	}
	if t.MidRangeSales >= t.HighPerformerSales {
		return fmt.Errorf("mid_range_sales (%v) must be below high_performer_sales (%v)",
			t.MidRangeSales, t.HighPerformerSales)
	}
	for i := 1; i < len(t.CostBounds); i++ {
		if t.CostBounds[i] <= t.CostBounds[i-1] {
			return fmt.Errorf("cost_bounds must be strictly ascending: %v", t.CostBounds)
		}
	}
	return nil
}

// CustomerSegment classifies a customer by lifespan in months and total spend.
func (t Thresholds) CustomerSegment(lifespanMonths int, spend decimal.Decimal) string {
	if lifespanMonths < t.VIPMinLifespanMonths {
		return New
	}
	if spend.GreaterThan(decimal.NewFromFloat(t.VIPMinSpend)) {
		return VIP
	}
	return Regular
}

// CustomerSegmentSQL returns the CASE expression equivalent to CustomerSegment.
// A NULL lifespan or spend falls through to New.
func (t Thresholds) CustomerSegmentSQL(lifespanExpr, spendExpr string) string {
	minSpend := literal(t.VIPMinSpend)
	return fmt.Sprintf(`CASE
        WHEN %[1]s >= %[3]d AND %[2]s > %[4]s THEN '%[5]s'
        WHEN %[1]s >= %[3]d AND %[2]s <= %[4]s THEN '%[6]s'
        ELSE '%[7]s'
    END`, lifespanExpr, spendExpr, t.VIPMinLifespanMonths, minSpend, VIP, Regular, New)
}

// ProductTier classifies a product by its total sales.
func (t Thresholds) ProductTier(totalSales decimal.Decimal) string {
	switch {
	case totalSales.GreaterThan(decimal.NewFromFloat(t.HighPerformerSales)):
		return HighPerformer
	case totalSales.GreaterThanOrEqual(decimal.NewFromFloat(t.MidRangeSales)):
		return MidRange
	default:
		return LowPerformer
	}
}

// ProductTierSQL returns the CASE expression equivalent to ProductTier.
func (t Thresholds) ProductTierSQL(salesExpr string) string {
	return fmt.Sprintf(`CASE
        WHEN %[1]s > %[2]s THEN '%[4]s'
        WHEN %[1]s >= %[3]s THEN '%[5]s'
        ELSE '%[6]s'
    END`, salesExpr, literal(t.HighPerformerSales), literal(t.MidRangeSales),
		HighPerformer, MidRange, LowPerformer)
}

// CostRanges returns the labels of all cost ranges in ascending order.
func (t Thresholds) CostRanges() []string {
	labels := make([]string, 0, len(t.CostBounds)+1)
	for i, b := range t.CostBounds {
		if i == 0 {
			labels = append(labels, "Below "+literal(b))
			continue
		}
		labels = append(labels, literal(t.CostBounds[i-1])+"-"+literal(b))
	}
	if n := len(t.CostBounds); n > 0 {
		labels = append(labels, "Above "+literal(t.CostBounds[n-1]))
	}
	return labels
}

// CostRange classifies a product cost. Range upper bounds are inclusive
// except for the first range, which excludes its bound.
func (t Thresholds) CostRange(cost decimal.Decimal) string {
	labels := t.CostRanges()
	for i, b := range t.CostBounds {
		bound := decimal.NewFromFloat(b)
		if i == 0 && cost.LessThan(bound) {
			return labels[0]
		}
		if i > 0 && cost.LessThanOrEqual(bound) {
			return labels[i]
		}
	}
	return labels[len(labels)-1]
}

// CostRangeSQL returns the CASE expression equivalent to CostRange.
func (t Thresholds) CostRangeSQL(costExpr string) string {
	labels := t.CostRanges()
	var b strings.Builder
	b.WriteString("CASE")
	for i, bound := range t.CostBounds {
		op := "<="
		if i == 0 {
			op = "<"
		}
		fmt.Fprintf(&b, "\n        WHEN %s %s %s THEN '%s'", costExpr, op, literal(bound), labels[i])
	}
	fmt.Fprintf(&b, "\n        ELSE '%s'\n    END", labels[len(labels)-1])
	return b.String()
}

// AgeGroup buckets an age in years.
func AgeGroup(age int) string {
	switch {
	case age < 20:
		return AgeUnder20
	case age <= 29:
		return Age20To29
	case age <= 39:
		return Age30To39
	case age <= 49:
		return Age40To49
	default:
		return Age50AndOver
	}
}

// AgeGroupSQL returns the CASE expression equivalent to AgeGroup. NULL ages
// (customers without a birthdate) map to Unknown.
func AgeGroupSQL(ageExpr string) string {
	return fmt.Sprintf(`CASE
        WHEN %[1]s IS NULL THEN '%[2]s'
        WHEN %[1]s < 20 THEN '%[3]s'
        WHEN %[1]s BETWEEN 20 AND 29 THEN '%[4]s'
        WHEN %[1]s BETWEEN 30 AND 39 THEN '%[5]s'
        WHEN %[1]s BETWEEN 40 AND 49 THEN '%[6]s'
        ELSE '%[7]s'
    END`, ageExpr, AgeUnknown, AgeUnder20, Age20To29, Age30To39, Age40To49, Age50AndOver)
}

// literal formats a threshold for embedding in SQL and labels.
func literal(v float64) string {
	return decimal.NewFromFloat(v).String()
}
