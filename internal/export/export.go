// Package export flattens the portfolio to a tabular form and serializes it
// to CSV or an XLSX workbook with a single "Customers" sheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
)

const sheetName = "Customers"

const timestampLayout = "2006-01-02 15:04:05"

// Columns is the fixed preferred column ordering; any remaining fields
// follow at the end.
var Columns = []string{
	"id", "name", "current_limit", "recommended_limit", "utilization",
	"payment_history", "income", "risk_score", "opportunity",
	"rate_reduction", "spending_category", "last_increase",
	"market_context", "added_by", "timestamp",
	"category_spend", "revenue_impact",
}

// Table flattens records into rows following Columns order.
func Table(records []domain.CustomerRecord) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, Columns)
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.Name,
			formatFloat(r.CurrentLimit),
			formatFloat(r.RecommendedLimit),
			formatFloat(r.Utilization),
			strconv.Itoa(r.PaymentHistory),
			formatFloat(r.Income),
			strconv.Itoa(r.RiskScore),
			string(r.Opportunity),
			formatFloat(r.RateReduction),
			r.SpendingCategory,
			r.LastIncrease,
			r.MarketContext,
			r.AddedBy,
			r.CreatedAt.Format(timestampLayout),
			formatCategorySpend(r.CategorySpend),
			formatFloat(r.RevenueImpact),
		})
	}
	return rows
}

// WriteCSV serializes the records as comma-separated text.
func WriteCSV(w io.Writer, records []domain.CustomerRecord) error {
	cw := csv.NewWriter(w)
	for _, row := range Table(records) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX serializes the records as a spreadsheet with one sheet named
// "Customers".
func WriteXLSX(w io.Writer, records []domain.CustomerRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, row := range Table(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCategorySpend(spend map[string]float64) string {
	for category, amount := range spend {
		return fmt.Sprintf("%s:%s", category, formatFloat(amount))
	}
	return ""
}

// Filename builds a timestamped export file name.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("customers_%s.%s", now.Format("20060102_150405"), ext)
}
