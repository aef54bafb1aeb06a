// Package export renders the three output tables (unified results,
// rejection rates, agreement rates) as CSV files and as one xlsx workbook
// for the presentation layer.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"simbench/domain/study"
)

// Missing aggregate cells are written as NA, never as 0.
const missingCell = "NA"

var (
	resultHeaders    = []string{"replication", "sample_size", "scenario", "comparison", "statistical_test", "statistic", "p_value", "method"}
	rejectionHeaders = []string{"scenario", "statistical_test", "sample_size", "comparison", "rejection_rate"}
	agreementHeaders = []string{"scenario", "sample_size", "comparison", "test_subset", "agreement_rate"}
)

// WriteResultsCSV writes the unified result table.
func WriteResultsCSV(w io.Writer, records []study.ReplicationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Replication),
			strconv.Itoa(rec.SampleSize),
			string(rec.Scenario),
			string(rec.Comparison),
			string(rec.Test),
			formatFloat(rec.Statistic),
			formatFloat(rec.PValue),
			rec.Method,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRejectionCSV writes the rejection-rate table.
func WriteRejectionCSV(w io.Writer, rows []study.RejectionRateRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rejectionHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		rate := missingCell
		if !r.Missing {
			rate = formatFloat(r.Rate)
		}
		row := []string{
			string(r.Scenario),
			string(r.Test),
			strconv.Itoa(r.SampleSize),
			string(r.Comparison),
			rate,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAgreementCSV writes the agreement-rate table.
func WriteAgreementCSV(w io.Writer, rows []study.AgreementRateRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(agreementHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		rate := missingCell
		if !r.Missing {
			rate = formatFloat(r.Rate)
		}
		row := []string{
			string(r.Scenario),
			strconv.Itoa(r.SampleSize),
			string(r.Comparison),
			string(r.Subset),
			rate,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat uses the shortest representation that round-trips, so a CSV
// reimport reproduces the exact float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
