package format

import (
	"io"
	"strings"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// HistorySheet is the name of the exported worksheet
const HistorySheet = "History"

// HistoryColumns are the header cells of the exported worksheet
var HistoryColumns = []string{
	"ID", "Created", "Project", "Mode",
	"Sample", "LOI", "IR", "Quota", "Hard target", "Locations", "Vendors", "Audience",
	"Case", "Difficulty", "Samples/day", "Days min", "Days max",
	"Expert days", "Expert note",
}

// HistoryXLSX builds a workbook with one row per history record
func HistoryXLSX(records []*model.HistoryRecord) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(HistorySheet)
	if err != nil {
		return nil, eris.Wrap(err, "failed to add history sheet")
	}

	header := sheet.AddRow()
	for _, col := range HistoryColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.CreatedAt.Format(time.RFC3339))
		row.AddCell().SetString(r.ProjectName)
		row.AddCell().SetString(string(r.Mode))
		row.AddCell().SetInt(r.Input.SampleSize)
		row.AddCell().SetInt(r.Input.LOI)
		row.AddCell().SetFloat(r.Input.IR)
		row.AddCell().SetString(string(r.Input.Quota))
		row.AddCell().SetString(yesNo(r.Input.HardTarget))
		row.AddCell().SetString(strings.Join(r.Input.Locations, ", "))
		row.AddCell().SetString(strings.Join(r.Input.Vendors, ", "))
		row.AddCell().SetString(r.Input.TargetAudience)
		row.AddCell().SetString(r.SystemResult.CaseName)
		row.AddCell().SetString(r.SystemResult.Difficulty)
		row.AddCell().SetFloat(r.SystemResult.SamplesPerDay)
		row.AddCell().SetInt(r.SystemResult.FWDaysMin)
		row.AddCell().SetInt(r.SystemResult.FWDaysMax)
		row.AddCell().SetInt(r.ExpertConclusion.Days)
		row.AddCell().SetString(r.ExpertConclusion.Note)
	}

	return file, nil
}

// WriteHistoryXLSX writes the history workbook to w
func WriteHistoryXLSX(w io.Writer, records []*model.HistoryRecord) error {
	file, err := HistoryXLSX(records)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "failed to write history workbook")
	}
	return nil
}

// SaveHistoryXLSX writes the history workbook to the given path
func SaveHistoryXLSX(path string, records []*model.HistoryRecord) error {
	file, err := HistoryXLSX(records)
	if err != nil {
		return err
	}
	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "failed to save history workbook to %s", path)
	}
	return nil
}
