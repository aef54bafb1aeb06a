package export

import (
	"github.com/xuri/excelize/v2"

	"simbench/domain/study"
)

// WriteXLSX writes one workbook with a sheet per output table.
func WriteXLSX(path string, records []study.ReplicationRecord,
	rejection []study.RejectionRateRow, agreement []study.AgreementRateRow) error {

	f := excelize.NewFile()
	defer f.Close()

	if err := writeResultsSheet(f, "results", records); err != nil {
		return err
	}
	if err := writeRejectionSheet(f, "rejection_rates", rejection); err != nil {
		return err
	}
	if err := writeAgreementSheet(f, "agreement_rates", agreement); err != nil {
		return err
	}

	// Drop the default sheet and activate the first table.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	idx, err := f.GetSheetIndex("results")
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	return f.SaveAs(path)
}

func writeResultsSheet(f *excelize.File, sheet string, records []study.ReplicationRecord) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, resultHeaders); err != nil {
		return err
	}
	for i, rec := range records {
		row := []interface{}{
			rec.Replication, rec.SampleSize, string(rec.Scenario), string(rec.Comparison),
			string(rec.Test), rec.Statistic, rec.PValue, rec.Method,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRejectionSheet(f *excelize.File, sheet string, rows []study.RejectionRateRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, rejectionHeaders); err != nil {
		return err
	}
	for i, r := range rows {
		var rate interface{} = missingCell
		if !r.Missing {
			rate = r.Rate
		}
		row := []interface{}{string(r.Scenario), string(r.Test), r.SampleSize, string(r.Comparison), rate}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAgreementSheet(f *excelize.File, sheet string, rows []study.AgreementRateRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, agreementHeaders); err != nil {
		return err
	}
	for i, r := range rows {
		var rate interface{} = missingCell
		if !r.Missing {
			rate = r.Rate
		}
		row := []interface{}{string(r.Scenario), r.SampleSize, string(r.Comparison), string(r.Subset), rate}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	for c, v := range values {
		cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
