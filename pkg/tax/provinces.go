// Package tax holds the sales tax rates applied to vehicle purchases in each
// Canadian province and territory.
package tax

import (
	"fmt"
	"sort"
	"strings"
)

// Province is a two-letter province or territory code.
type Province string

// TaxComponent is one of the taxes that make up a province's combined rate.
type TaxComponent struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// ProvinceTaxInfo describes the sales taxes levied in a province.
type ProvinceTaxInfo struct {
	Code       Province       `json:"code"`
	Name       string         `json:"name"`
	Components []TaxComponent `json:"components"`
}

// CombinedRate sums all components as a fraction.
func (p ProvinceTaxInfo) CombinedRate() float64 {
	total := 0.0
	for _, c := range p.Components {
		total += c.Rate
	}
	return total
}

var (
	gst = TaxComponent{Name: "GST", Rate: 0.05}
	hst = func(rate float64) TaxComponent { return TaxComponent{Name: "HST", Rate: rate} }
)

var provinces = map[Province]ProvinceTaxInfo{
	"AB": {Code: "AB", Name: "Alberta", Components: []TaxComponent{gst}},
	"BC": {Code: "BC", Name: "British Columbia", Components: []TaxComponent{gst, {Name: "PST", Rate: 0.07}}},
	"MB": {Code: "MB", Name: "Manitoba", Components: []TaxComponent{gst, {Name: "RST", Rate: 0.07}}},
	"NB": {Code: "NB", Name: "New Brunswick", Components: []TaxComponent{hst(0.15)}},
	"NL": {Code: "NL", Name: "Newfoundland & Labrador", Components: []TaxComponent{hst(0.15)}},
	"NS": {Code: "NS", Name: "Nova Scotia", Components: []TaxComponent{hst(0.15)}},
	"NT": {Code: "NT", Name: "Northwest Territories", Components: []TaxComponent{gst}},
	"NU": {Code: "NU", Name: "Nunavut", Components: []TaxComponent{gst}},
	"ON": {Code: "ON", Name: "Ontario", Components: []TaxComponent{hst(0.13)}},
	"PE": {Code: "PE", Name: "Prince Edward Island", Components: []TaxComponent{hst(0.15)}},
	"QC": {Code: "QC", Name: "Quebec", Components: []TaxComponent{gst, {Name: "QST", Rate: 0.09975}}},
	"SK": {Code: "SK", Name: "Saskatchewan", Components: []TaxComponent{gst, {Name: "PST", Rate: 0.06}}},
	"YT": {Code: "YT", Name: "Yukon", Components: []TaxComponent{gst}},
}

// Lookup returns the tax information for a province code.
func Lookup(code Province) (ProvinceTaxInfo, bool) {
	info, ok := provinces[code]
	return info.clone(), ok
}

func (p ProvinceTaxInfo) clone() ProvinceTaxInfo {
	p.Components = append([]TaxComponent(nil), p.Components...)
	return p
}

// CombinedRate returns the total sales tax fraction for a province code.
func CombinedRate(code Province) (float64, error) {
	info, ok := Lookup(code)
	if !ok {
		return 0, fmt.Errorf("unknown province %q", code)
	}
	return info.CombinedRate(), nil
}

// ParseProvince normalizes a province code, accepting lower case and surrounding whitespace.
func ParseProvince(s string) (Province, error) {
	code := Province(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := provinces[code]; !ok {
		return "", fmt.Errorf("unknown province %q", s)
	}
	return code, nil
}

// Provinces lists every province sorted by name.
func Provinces() []ProvinceTaxInfo {
	list := make([]ProvinceTaxInfo, 0, len(provinces))
	for _, info := range provinces {
		list = append(list, info.clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}
