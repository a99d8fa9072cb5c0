package segment

import (
	"fmt"
	"time"
)

// MonthsBetween counts calendar month boundaries crossed between from and to,
// ignoring the day of month. It is negative when to precedes from.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// YearsBetween counts calendar year boundaries crossed between from and to.
// Ages and spans in the reports use this, not anniversary-exact arithmetic.
func YearsBetween(from, to time.Time) int {
	return to.Year() - from.Year()
}

// MonthsBetweenSQL is the SQL form of MonthsBetween. NULL inputs yield NULL.
func MonthsBetweenSQL(fromExpr, toExpr string) string {
	return fmt.Sprintf(
		"((EXTRACT(YEAR FROM %[2]s) - EXTRACT(YEAR FROM %[1]s)) * 12 + "+
			"(EXTRACT(MONTH FROM %[2]s) - EXTRACT(MONTH FROM %[1]s)))::int",
		fromExpr, toExpr)
}

// YearsBetweenSQL is the SQL form of YearsBetween.
func YearsBetweenSQL(fromExpr, toExpr string) string {
	return fmt.Sprintf("(EXTRACT(YEAR FROM %[2]s) - EXTRACT(YEAR FROM %[1]s))::int",
		fromExpr, toExpr)
}

// DateSQL returns a SQL date expression for asOf, or CURRENT_DATE when asOf
// is the zero time.
func DateSQL(asOf time.Time) string {
	if asOf.IsZero() {
		return "CURRENT_DATE"
	}
	return "DATE '" + asOf.Format(time.DateOnly) + "'"
}
