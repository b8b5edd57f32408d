package ui

import (
	"fmt"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var historyHeaders = []string{"ID", "Project", "Mode", "Date", "n", "LOI", "IR", "System", "Expert", "Note"}

// HistoryTable is a tview table component for displaying saved calculations
type HistoryTable struct {
	*tview.Table

	// Callbacks
	OnDelete func(record *model.HistoryRecord)
	OnClose  func()

	records []*model.HistoryRecord
}

// NewHistoryTable creates a new HistoryTable
func NewHistoryTable() *HistoryTable {
	t := &HistoryTable{
		Table: tview.NewTable(),
	}

	t.SetBorder(true)
	t.SetTitle(" History ")
	t.SetSelectable(true, false)
	t.SetFixed(1, 0) // Fixed header row

	t.setupColumns()
	t.setupKeyBindings()

	return t
}

// setupColumns sets up the table columns
func (t *HistoryTable) setupColumns() {
	for i, header := range historyHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1)

		if i >= 4 && i <= 8 {
			cell = cell.SetAlign(tview.AlignRight)
		}

		t.SetCell(0, i, cell)
	}
}

// SetRecords replaces the displayed records
func (t *HistoryTable) SetRecords(records []*model.HistoryRecord) {
	// Clear existing rows (keep header)
	for i := t.GetRowCount() - 1; i > 0; i-- {
		t.RemoveRow(i)
	}

	t.records = records

	for i, record := range records {
		t.addRecordRow(i+1, record)
	}

	if len(records) > 0 {
		t.Select(1, 0)
	}
}

// addRecordRow adds a row for a saved calculation
func (t *HistoryTable) addRecordRow(row int, r *model.HistoryRecord) {
	expert := "-"
	if r.ExpertConclusion.Days > 0 {
		expert = fmt.Sprintf("%d", r.ExpertConclusion.Days)
	}

	values := []string{
		r.ID,
		r.ProjectName,
		string(r.Mode),
		r.CreatedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", r.Input.SampleSize),
		fmt.Sprintf("%d", r.Input.LOI),
		fmt.Sprintf("%g%%", r.Input.IR),
		fmt.Sprintf("%d-%d", r.SystemResult.FWDaysMin, r.SystemResult.FWDaysMax),
		expert,
		r.ExpertConclusion.Note,
	}

	for i, value := range values {
		cell := tview.NewTableCell(tview.Escape(value)).
			SetTextColor(tcell.ColorWhite).
			SetReference(r.ID)
		if i == 1 || i == 9 {
			cell = cell.SetExpansion(2)
		}
		if i >= 4 && i <= 8 {
			cell = cell.SetAlign(tview.AlignRight)
		}
		if i == 7 {
			cell = cell.SetTextColor(tcell.ColorGreen)
		}
		t.SetCell(row, i, cell)
	}
}

// setupKeyBindings sets up keyboard navigation
func (t *HistoryTable) setupKeyBindings() {
	t.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			if t.OnClose != nil {
				t.OnClose()
			}
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'j':
				row, col := t.GetSelection()
				if row < t.GetRowCount()-1 {
					t.Select(row+1, col)
				}
				return nil
			case 'k':
				row, col := t.GetSelection()
				if row > 1 {
					t.Select(row-1, col)
				}
				return nil
			case 'd':
				if record := t.GetSelectedRecord(); record != nil && t.OnDelete != nil {
					t.OnDelete(record)
				}
				return nil
			case 'q':
				if t.OnClose != nil {
					t.OnClose()
				}
				return nil
			}
		}

		return event
	})
}

// GetSelectedRecord returns the currently selected record
func (t *HistoryTable) GetSelectedRecord() *model.HistoryRecord {
	row, _ := t.GetSelection()
	if row < 1 || row > len(t.records) {
		return nil
	}
	return t.records[row-1]
}

// GetRecordCount returns the number of records
func (t *HistoryTable) GetRecordCount() int {
	return len(t.records)
}
