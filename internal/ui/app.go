package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/format"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// App represents the main tview application
type App struct {
	ctx     context.Context
	app     *tview.Application
	engine  *engine.Engine
	history store.HistoryStore
	toggles engine.FactorToggles
	limit   int

	// UI Components
	pages        *tview.Pages
	layout       *tview.Flex
	header       *tview.TextView
	form         *tview.Form
	preview      *tview.TextView
	footer       *tview.TextView
	historyTable *HistoryTable

	// Form fields
	nameField     *tview.InputField
	sampleField   *tview.InputField
	loiField      *tview.InputField
	irField       *tview.InputField
	quotaField    *tview.DropDown
	hardTarget    *tview.Checkbox
	locationField *tview.InputField
	vendorField   *tview.InputField
	skewField     *tview.DropDown
	qcField       *tview.InputField
	startField    *tview.InputField
	audienceField *tview.DropDown
	expertField   *tview.InputField

	// State
	values       formValues
	expertDays   string
	quick        bool
	report       *format.Report
	status       string
	modalVisible bool
}

// NewApp creates a new App instance. History may be nil, saving is then
// disabled.
func NewApp(eng *engine.Engine, history store.HistoryStore, toggles engine.FactorToggles, limit int, input model.ProjectInput) *App {
	input.Normalize()

	a := &App{
		ctx:     context.Background(),
		app:     tview.NewApplication(),
		engine:  eng,
		history: history,
		toggles: toggles,
		limit:   limit,
		values:  valuesFromInput(input),
	}

	a.setupUI()
	a.recompute()

	return a
}

// setupUI creates and configures all UI components
func (a *App) setupUI() {
	// Header
	a.header = tview.NewTextView()
	a.header.SetDynamicColors(true)
	a.header.SetTextAlign(tview.AlignCenter)
	a.header.SetBorder(true)

	// Project form
	a.setupForm()

	// Preview
	a.preview = tview.NewTextView()
	a.preview.SetDynamicColors(true)
	a.preview.SetScrollable(true)
	a.preview.SetBorder(true)
	a.preview.SetTitle(" Estimate ")

	// History table
	a.historyTable = NewHistoryTable()
	a.historyTable.OnDelete = a.deleteRecord
	a.historyTable.OnClose = a.closeHistory

	// Footer
	a.footer = tview.NewTextView()
	a.footer.SetDynamicColors(true)

	// Main content (two columns)
	mainContent := tview.NewFlex().SetDirection(tview.FlexColumn)
	mainContent.AddItem(a.form, 0, 1, true)     // Left: project form
	mainContent.AddItem(a.preview, 0, 1, false) // Right: live estimate

	// Layout
	a.layout = tview.NewFlex().SetDirection(tview.FlexRow)
	a.layout.AddItem(a.header, 3, 0, false)
	a.layout.AddItem(mainContent, 0, 1, true)
	a.layout.AddItem(a.footer, 1, 0, false)

	// Pages for modal dialogs
	a.pages = tview.NewPages()
	a.pages.AddPage("main", a.layout, true, true)

	a.updateHeader()
	a.updateFooter()
}

// setupForm creates the project input fields. Every change recomputes the
// estimate.
func (a *App) setupForm() {
	ref := a.engine.Reference()

	a.form = tview.NewForm()
	a.form.SetBorder(true)
	a.form.SetTitle(" Project ")
	a.form.SetItemPadding(0)

	// Templates
	templateOptions := []string{"(none)"}
	for _, t := range ref.Templates {
		templateOptions = append(templateOptions, t.Name)
	}
	templateField := tview.NewDropDown().
		SetLabel("Template:").
		SetOptions(templateOptions, nil).
		SetCurrentOption(0)
	templateField.SetSelectedFunc(func(_ string, index int) {
		if index > 0 {
			a.applyTemplate(ref.Templates[index-1])
		}
	})

	a.nameField = a.inputField("Project name:", a.values.Name, 30, func(text string) { a.values.Name = text })
	a.sampleField = a.inputField("Sample size:", a.values.Sample, 8, func(text string) { a.values.Sample = text })
	a.loiField = a.inputField("LOI (min):", a.values.LOI, 8, func(text string) { a.values.LOI = text })
	a.irField = a.inputField("IR (%):", a.values.IR, 8, func(text string) { a.values.IR = text })

	quotaOptions := []model.QuotaType{model.QuotaSimple, model.QuotaNested}
	a.quotaField = a.dropDown("Quota:", len(quotaOptions), func(i int) string { return string(quotaOptions[i]) },
		func(i int) bool { return quotaOptions[i] == a.values.Quota },
		func(i int) { a.values.Quota = quotaOptions[i] })

	a.hardTarget = tview.NewCheckbox().
		SetLabel("Hard target:").
		SetChecked(a.values.HardTarget).
		SetChangedFunc(func(checked bool) {
			a.values.HardTarget = checked
			a.recompute()
		})

	a.locationField = a.inputField("Locations:", a.values.Locations, 30, func(text string) { a.values.Locations = text })
	a.vendorField = a.inputField("Vendors:", a.values.Vendors, 30, func(text string) { a.values.Vendors = text })

	skews := ref.QuotaSkew
	a.skewField = a.dropDown("Quota skew:", len(skews), func(i int) string { return skews[i].Name },
		func(i int) bool { return skews[i].ID == a.values.Skew },
		func(i int) { a.values.Skew = skews[i].ID })

	a.qcField = a.inputField("QC buffer (%):", a.values.QCBuffer, 8, func(text string) { a.values.QCBuffer = text })
	a.startField = a.inputField("Start date:", a.values.Start, 12, func(text string) { a.values.Start = text })
	a.startField.SetPlaceholder("YYYY-MM-DD")

	audiences := ref.TargetAudiences
	a.audienceField = a.dropDown("Audience:", len(audiences), func(i int) string { return audiences[i].Name },
		func(i int) bool { return audiences[i].ID == a.values.Audience },
		func(i int) { a.values.Audience = audiences[i].ID })

	a.expertField = a.inputField("Expert days:", a.expertDays, 8, func(text string) { a.expertDays = text })

	a.form.AddFormItem(templateField)
	a.form.AddFormItem(a.nameField)
	a.form.AddFormItem(a.sampleField)
	a.form.AddFormItem(a.loiField)
	a.form.AddFormItem(a.irField)
	a.form.AddFormItem(a.quotaField)
	a.form.AddFormItem(a.hardTarget)
	a.form.AddFormItem(a.locationField)
	a.form.AddFormItem(a.vendorField)
	a.form.AddFormItem(a.skewField)
	a.form.AddFormItem(a.qcField)
	a.form.AddFormItem(a.startField)
	a.form.AddFormItem(a.audienceField)
	a.form.AddFormItem(a.expertField)
}

func (a *App) inputField(label, value string, width int, set func(string)) *tview.InputField {
	field := tview.NewInputField().
		SetLabel(label).
		SetText(value).
		SetFieldWidth(width)
	field.SetChangedFunc(func(text string) {
		set(text)
		a.recompute()
	})
	return field
}

func (a *App) dropDown(label string, count int, option func(int) string, current func(int) bool, set func(int)) *tview.DropDown {
	options := make([]string, count)
	selected := 0
	for i := range options {
		options[i] = option(i)
		if current(i) {
			selected = i
		}
	}

	field := tview.NewDropDown().
		SetLabel(label).
		SetOptions(options, nil).
		SetCurrentOption(selected)
	field.SetSelectedFunc(func(_ string, index int) {
		if index >= 0 && index < count {
			set(index)
			a.recompute()
		}
	})
	return field
}

// applyTemplate prefills the form from a template, keeping the project name
func (a *App) applyTemplate(t model.Template) {
	input := t.Apply(a.values.Name)
	input.Vendors = splitIDs(a.values.Vendors)
	start, err := calendar.ParseDate(a.values.Start)
	if err == nil {
		input.StartDate = start
	}

	values := valuesFromInput(input)
	values.QCBuffer = a.values.QCBuffer
	values.Skew = a.values.Skew
	a.values = values

	a.sampleField.SetText(values.Sample)
	a.loiField.SetText(values.LOI)
	a.irField.SetText(values.IR)
	a.locationField.SetText(values.Locations)
	a.hardTarget.SetChecked(values.HardTarget)
	a.selectOption(a.quotaField, string(values.Quota))
	a.selectAudience(values.Audience)

	a.recompute()
}

func (a *App) selectOption(field *tview.DropDown, value string) {
	for i := 0; i < field.GetOptionCount(); i++ {
		field.SetCurrentOption(i)
		if _, option := field.GetCurrentOption(); option == value {
			return
		}
	}
}

func (a *App) selectAudience(id string) {
	for i, audience := range a.engine.Reference().TargetAudiences {
		if audience.ID == id {
			a.audienceField.SetCurrentOption(i)
			return
		}
	}
}

// recompute rebuilds the report from the form values and refreshes the preview
func (a *App) recompute() {
	input, problems := a.values.input()

	expertDays, err := parseInt(a.expertDays)
	if err != nil {
		problems = append(problems, fmt.Sprintf("expert days: %v", err))
	}

	if len(problems) > 0 {
		a.report = &format.Report{Input: input, Problems: problems}
	} else {
		a.report = format.NewReport(a.engine, format.Request{
			Input:      input,
			Toggles:    a.toggles,
			Quick:      a.quick,
			ExpertDays: expertDays,
		})
	}

	if a.preview != nil {
		a.preview.SetText(renderPreview(a.report))
		a.preview.ScrollToBeginning()
	}
	if a.header != nil {
		a.updateHeader()
	}
}

// updateHeader updates the header text
func (a *App) updateHeader() {
	title := strings.TrimSpace(a.values.Name)
	if title == "" {
		title = model.DefaultProjectName
	}

	mode := "detailed"
	if a.quick {
		mode = "[green]quick[white]"
	}

	a.header.SetText(fmt.Sprintf("Fieldwork - %s (%s)", tview.Escape(title), mode))
}

// updateFooter updates the footer text
func (a *App) updateFooter() {
	text := "[yellow]Ctrl-S[white] Save  [yellow]F2[white] Quick mode  [yellow]F3[white] History  [yellow]F1[white] Help  [yellow]Ctrl-Q[white] Quit"
	if a.status != "" {
		text = a.status + "  " + text
	}
	a.footer.SetText(text)
}

func (a *App) setStatus(status string) {
	a.status = status
	a.updateFooter()
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx

	a.app.SetInputCapture(a.handleInput)

	// Stop the application when the context is cancelled
	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	a.app.SetRoot(a.pages, true)
	a.app.SetFocus(a.form)
	return a.app.Run()
}

// handleInput handles global key input
func (a *App) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		// Ignore Ctrl+C, user must use Ctrl-Q to quit
		return nil
	case tcell.KeyCtrlQ:
		a.app.Stop()
		return nil
	}

	// If modal is visible, pass all keys to modal
	if a.modalVisible {
		return event
	}

	switch event.Key() {
	case tcell.KeyCtrlS:
		a.showSaveDialog()
		return nil
	case tcell.KeyF1:
		a.showHelp()
		return nil
	case tcell.KeyF2:
		a.quick = !a.quick
		a.recompute()
		return nil
	case tcell.KeyF3:
		a.showHistory()
		return nil
	}

	return event
}

// showSaveDialog asks for an expert note and saves the calculation
func (a *App) showSaveDialog() {
	if a.history == nil {
		a.setStatus("[red]History is not configured[white]")
		return
	}
	if !a.report.HasResult() {
		a.setStatus("[red]Nothing to save, fix the problems first[white]")
		return
	}

	expertDays, _ := parseInt(a.expertDays)

	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" Save Calculation ")
	form.SetTitleAlign(tview.AlignCenter)

	var note string
	form.AddTextView("Expert days:", fmt.Sprintf("%d", expertDays), 10, 1, false, false)
	form.AddTextArea("Note:", "", 50, 4, 0, func(text string) {
		note = text
	})

	closeModal := func() {
		a.modalVisible = false
		a.pages.RemovePage("modal")
		a.app.SetFocus(a.form)
	}

	saveAndClose := func() {
		record := a.report.HistoryRecord(expertDays, strings.TrimSpace(note))
		id, err := a.history.SaveCalculation(a.ctx, record)
		if err != nil {
			zap.L().Error("failed to save calculation", zap.Error(err))
			a.setStatus(fmt.Sprintf("[red]Error: Failed to save: %s[white]", tview.Escape(err.Error())))
		} else {
			a.setStatus(fmt.Sprintf("[green]Saved as %s[white]", id))
		}
		closeModal()
	}

	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			closeModal()
			return nil
		}
		return event
	})

	form.AddButton("Save", saveAndClose)
	form.AddButton("Cancel (Esc)", closeModal)
	form.SetCancelFunc(closeModal)

	a.showModal(form, 64, 12)
}

// showHistory loads the recent calculations into the history page
func (a *App) showHistory() {
	if a.history == nil {
		a.setStatus("[red]History is not configured[white]")
		return
	}

	records, err := a.history.RecentHistory(a.ctx, a.limit)
	if err != nil {
		zap.L().Error("failed to load history", zap.Error(err))
		a.setStatus(fmt.Sprintf("[red]Error: Failed to load history: %s[white]", tview.Escape(err.Error())))
		return
	}

	a.historyTable.SetRecords(records)
	a.modalVisible = true
	a.pages.AddPage("history", a.historyTable, true, true)
	a.app.SetFocus(a.historyTable)
	a.setStatus("[yellow]d[white] Delete  [yellow]Esc[white] Back")
}

func (a *App) closeHistory() {
	a.modalVisible = false
	a.pages.RemovePage("history")
	a.app.SetFocus(a.form)
	a.setStatus("")
}

func (a *App) deleteRecord(record *model.HistoryRecord) {
	if err := a.history.DeleteHistory(a.ctx, record.ID); err != nil {
		a.setStatus(fmt.Sprintf("[red]Error: Failed to delete: %s[white]", tview.Escape(err.Error())))
		return
	}

	records, err := a.history.RecentHistory(a.ctx, a.limit)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]Error: Failed to load history: %s[white]", tview.Escape(err.Error())))
		return
	}
	a.historyTable.SetRecords(records)
	a.setStatus(fmt.Sprintf("[green]Deleted %s[white]", record.ID))
}

// showHelp displays help information
func (a *App) showHelp() {
	helpView := tview.NewTextView()
	helpView.SetDynamicColors(true)
	helpView.SetBorder(true)
	helpView.SetTitle(" Keyboard Shortcuts ")
	helpView.SetTitleAlign(tview.AlignCenter)
	helpView.SetTextAlign(tview.AlignLeft)

	helpText := `[yellow]Commands:[white]
  Ctrl-S     Save calculation to history
  F2         Toggle quick mode (best/likely/worst)
  F3         Show history
  Ctrl-Q     Quit

[yellow]Form:[white]
  Tab        Next field
  Shift-Tab  Previous field
  Locations and vendors are comma separated IDs

[yellow]History:[white]
  j/k        Navigate
  d          Delete selected calculation
  Esc        Back to the form

[gray]Press Escape or Enter to close[white]`

	helpView.SetText(helpText)

	helpView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Key() == tcell.KeyEnter {
			a.modalVisible = false
			a.pages.RemovePage("modal")
			a.app.SetFocus(a.form)
			return nil
		}
		return event
	})

	a.showModal(helpView, 56, 20)
}

// showModal centers a primitive over the main page
func (a *App) showModal(p tview.Primitive, width, height int) {
	flex := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)

	a.modalVisible = true
	a.pages.AddPage("modal", flex, true, true)
	a.app.SetFocus(p)
}
