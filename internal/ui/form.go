package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/bornholm/fieldwork/internal/model"
)

// formValues holds the raw text of the project form fields
type formValues struct {
	Name       string
	Sample     string
	LOI        string
	IR         string
	Quota      model.QuotaType
	HardTarget bool
	Locations  string
	Vendors    string
	Skew       model.QuotaSkewID
	QCBuffer   string
	Start      string
	Audience   string
}

// valuesFromInput fills the form values from a project input
func valuesFromInput(input model.ProjectInput) formValues {
	v := formValues{
		Name:       input.ProjectName,
		Sample:     formatInt(input.SampleSize),
		LOI:        formatInt(input.LOI),
		IR:         formatNumber(input.IR),
		Quota:      input.Quota,
		HardTarget: input.HardTarget,
		Locations:  strings.Join(input.Locations, ", "),
		Vendors:    strings.Join(input.Vendors, ", "),
		Skew:       input.QuotaSkew,
		QCBuffer:   formatNumber(input.QCBufferPercent),
		Audience:   input.TargetAudience,
	}
	if input.StartDate != nil {
		v.Start = input.StartDate.Format("2006-01-02")
	}
	return v
}

// input parses the form values. Empty numeric fields are left at zero so
// that validation reports them. Parse errors are returned as problems.
func (v formValues) input() (model.ProjectInput, []string) {
	var problems []string

	input := model.ProjectInput{
		ProjectName:    strings.TrimSpace(v.Name),
		Quota:          v.Quota,
		HardTarget:     v.HardTarget,
		Locations:      splitIDs(v.Locations),
		Vendors:        splitIDs(v.Vendors),
		QuotaSkew:      v.Skew,
		TargetAudience: v.Audience,
	}

	var err error
	if input.SampleSize, err = parseInt(v.Sample); err != nil {
		problems = append(problems, fmt.Sprintf("sample size: %v", err))
	}
	if input.LOI, err = parseInt(v.LOI); err != nil {
		problems = append(problems, fmt.Sprintf("LOI: %v", err))
	}
	if input.IR, err = parseNumber(v.IR); err != nil {
		problems = append(problems, fmt.Sprintf("IR: %v", err))
	}
	if input.QCBufferPercent, err = parseNumber(v.QCBuffer); err != nil {
		problems = append(problems, fmt.Sprintf("QC buffer: %v", err))
	}

	start, err := calendar.ParseDate(v.Start)
	if err != nil {
		problems = append(problems, err.Error())
	}
	input.StartDate = start

	input.Normalize()

	return input, problems
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.ToLower(strings.TrimSpace(part)); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a whole number", s)
	}
	return n, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number", s)
	}
	return f, nil
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatNumber(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
