package report

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"bookkeeper/internal/models"
)

// Money formats an amount with thousands separators and two decimals.
func Money(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// WriteMonthly renders r as plain text.
func WriteMonthly(w io.Writer, r *MonthlyReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	month := time.Month(r.Month).String()

	fmt.Fprintf(tw, "Monthly Report for %s %d\n", month, r.Year)

	fmt.Fprintln(tw, "\nIncome:")
	if !r.HasIncome() {
		fmt.Fprintln(tw, "  No income recorded for this month.")
	}
	writeTransactions(tw, r.Income)

	fmt.Fprintln(tw, "\nExpenses:")
	if !r.HasExpenses() {
		fmt.Fprintln(tw, "  No expenses recorded for this month.")
	}
	writeTransactions(tw, r.Expenses)

	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintf(tw, "  Total Income:\t%s\n", Money(r.TotalIncome))
	fmt.Fprintf(tw, "  Total Expenses:\t%s\n", Money(r.TotalExpense))
	fmt.Fprintf(tw, "  Net Savings/Loss:\t%s\n", Money(r.Net))

	fmt.Fprintln(tw, "\nIncome by Category:")
	writeSubtotals(tw, r.IncomeByCategory)

	fmt.Fprintln(tw, "\nExpenses by Category:")
	writeStats(tw, r.ExpenseStats)

	fmt.Fprintln(tw)
	writeOverages(tw, r.Overages)

	return tw.Flush()
}

// WriteOverages lists the categories over budget, or says there are none.
func WriteOverages(w io.Writer, overages []models.Overage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeOverages(tw, overages)
	return tw.Flush()
}

// WriteBudgetStatus renders spent against budgeted for each budgeted category.
func WriteBudgetStatus(w io.Writer, statuses []models.BudgetStatus) error {
	if len(statuses) == 0 {
		_, err := fmt.Fprintln(w, "No budgets set for this month.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tBudgeted\tSpent\tRemaining\t")
	for _, s := range statuses {
		flag := ""
		if s.Over() {
			flag = "OVER"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Category, Money(s.Budgeted), Money(s.Spent), Money(s.Remaining), flag)
	}
	return tw.Flush()
}

// WriteYearly renders r as plain text.
func WriteYearly(w io.Writer, r *YearlyReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "Yearly Report for %d\n\n", r.Year)
	fmt.Fprintln(tw, "Month\tIncome\tExpenses\tSavings\t")
	for _, m := range r.Months {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			time.Month(m.Month).String()[:3], Money(m.Income), Money(m.Expense), Money(m.Net))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nAnnual Summary:")
	fmt.Fprintf(w, "  Total Annual Income:   %s\n", Money(r.TotalIncome))
	fmt.Fprintf(w, "  Total Annual Expenses: %s\n", Money(r.TotalExpense))
	_, err := fmt.Fprintf(w, "  Net Annual Savings/Loss: %s\n", Money(r.Net))
	return err
}

// WriteTransactions renders a transaction list as an aligned table.
func WriteTransactions(w io.Writer, transactions []models.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDate\tType\tCategory\tAmount\tDescription")
	for _, t := range transactions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Kind, t.Category, Money(t.Amount), t.Description)
	}
	return tw.Flush()
}

func writeTransactions(w io.Writer, transactions []models.Transaction) {
	for _, t := range transactions {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Category, Money(t.Amount), t.Description)
	}
}

func writeSubtotals(w io.Writer, totals map[string]decimal.Decimal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "  N/A")
		return
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, Money(totals[name]))
	}
}

func writeOverages(w io.Writer, overages []models.Overage) {
	if len(overages) == 0 {
		fmt.Fprintln(w, "No budget limits exceeded this month.")
		return
	}
	fmt.Fprintln(w, "Budget Overages:")
	for _, o := range overages {
		fmt.Fprintf(w, "  %s\tspent %s\tbudget %s\tover by %s\n",
			o.Category, Money(o.Spent), Money(o.Budgeted), Money(o.OverBy))
	}
}

func writeStats(w io.Writer, stats []CategoryStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "  N/A")
		return
	}
	for _, st := range stats {
		fmt.Fprintf(w, "  %s\t%s\t%d tx\t%s%%\n", st.Category, Money(st.Total), st.Count, st.Percentage.StringFixed(1))
	}
}
