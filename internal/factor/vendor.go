// Package factor maps project selections to the throughput multipliers
// composed by the estimation engine.
package factor

import "github.com/bornholm/fieldwork/internal/model"

// VendorResult is the aggregated effect of the selected panel vendors
type VendorResult struct {
	Factor      float64             `json:"factor"`
	AvgQCReject float64             `json:"avgQcReject"`
	Vendors     []model.PanelVendor `json:"vendors"`
}

// Vendor averages the response factor and QC reject rate of the selected
// vendors. Without a known selection the factor is neutral and the QC
// reject rate is model.DefaultVendorQCReject.
func Vendor(all []model.PanelVendor, selected []string) VendorResult {
	vendors := selectByID(all, selected, func(v model.PanelVendor) string { return v.ID })
	if len(vendors) == 0 {
		return VendorResult{
			Factor:      1.0,
			AvgQCReject: model.DefaultVendorQCReject,
			Vendors:     []model.PanelVendor{},
		}
	}

	var factorSum, qcSum float64
	for _, v := range vendors {
		factorSum += v.GetResponseFactor()
		qcSum += v.GetDefaultQCReject()
	}

	n := float64(len(vendors))
	return VendorResult{
		Factor:      factorSum / n,
		AvgQCReject: qcSum / n,
		Vendors:     vendors,
	}
}

// selectByID keeps the items whose ID is selected, preserving table order
func selectByID[T any](all []T, selected []string, id func(T) string) []T {
	if len(selected) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		wanted[s] = struct{}{}
	}

	var result []T
	for _, item := range all {
		if _, ok := wanted[id(item)]; ok {
			result = append(result, item)
		}
	}
	return result
}
