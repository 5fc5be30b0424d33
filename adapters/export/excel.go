package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"panelsim/domain/results"
	"panelsim/domain/survey"
)

// StatsWriter serializes aggregated study statistics to an xlsx workbook.
// Column layout mirrors the QuestionStats shape; raw responses are not
// exported here.
type StatsWriter struct{}

// NewStatsWriter creates an xlsx stats writer
func NewStatsWriter() *StatsWriter {
	return &StatsWriter{}
}

const (
	summarySheet      = "Summary"
	distributionSheet = "Distributions"
)

// Write renders the stats workbook to w
func (sw *StatsWriter) Write(w io.Writer, studyName string, stats []results.QuestionStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(distributionSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := sw.writeSummary(f, studyName, stats); err != nil {
		return err
	}
	if err := sw.writeDistributions(f, stats); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (sw *StatsWriter) writeSummary(f *excelize.File, studyName string, stats []results.QuestionStats) error {
	headers := []interface{}{
		"Question", "Type", "Total Responses", "Valid Ratings",
		"Mean", "Median", "Std Dev", "NPS Score", "Avg Confidence %",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellValue(summarySheet, "K1", studyName); err != nil {
		return err
	}

	for i, qs := range stats {
		row := []interface{}{
			qs.QuestionText, string(qs.Type), qs.TotalResponses, qs.ValidRatings,
		}
		if qs.ValidRatings > 0 {
			row = append(row, qs.Mean, qs.Median, qs.StdDev)
		} else {
			row = append(row, "", "", "")
		}
		if qs.NPS != nil {
			row = append(row, qs.NPS.Score)
		} else {
			row = append(row, "")
		}
		row = append(row, qs.AvgConfidence)

		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (sw *StatsWriter) writeDistributions(f *excelize.File, stats []results.QuestionStats) error {
	rowIdx := 1
	for _, qs := range stats {
		if len(qs.Distribution) == 0 {
			continue
		}

		offset := 1
		if qs.Type == survey.TypeNPS {
			offset = 0
		}

		label := []interface{}{qs.QuestionText}
		if err := f.SetSheetRow(distributionSheet, fmt.Sprintf("A%d", rowIdx), &label); err != nil {
			return err
		}
		rowIdx++

		points := make([]interface{}, 0, len(qs.Distribution)+1)
		percents := make([]interface{}, 0, len(qs.Distribution)+1)
		points = append(points, "Scale point")
		percents = append(percents, "Percent")
		for i, pct := range qs.Distribution {
			points = append(points, i+offset)
			percents = append(percents, pct)
		}
		if err := f.SetSheetRow(distributionSheet, fmt.Sprintf("A%d", rowIdx), &points); err != nil {
			return err
		}
		rowIdx++
		if err := f.SetSheetRow(distributionSheet, fmt.Sprintf("A%d", rowIdx), &percents); err != nil {
			return err
		}
		rowIdx += 2
	}
	return nil
}
