package constants

import (
	"strings"
)

type Category string

const (
	Advertising      Category = "Advertising"
	Education        Category = "Education"
	Fuel             Category = "Fuel"
	Insurance        Category = "Insurance"
	LicensesAndFees  Category = "LicensesAndFees"
	Meals            Category = "Meals"
	OfficeSupplies   Category = "OfficeSupplies"
	PrintingAndPaper Category = "PrintingAndPaper"
	SoftwareAndApps  Category = "SoftwareAndApps"
	TravelExpenses   Category = "TravelExpenses"
	Other            Category = "Other"
)

var allCategories = []Category{
	Advertising,
	Education,
	Fuel,
	Insurance,
	LicensesAndFees,
	Meals,
	OfficeSupplies,
	PrintingAndPaper,
	SoftwareAndApps,
	TravelExpenses,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form category label from the model onto the enum.
// Returns (Other, false) when the label cannot be resolved.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"gas":          Fuel,
		"gasoline":     Fuel,
		"mileage":      Fuel,
		"marketing":    Advertising,
		"ads":          Advertising,
		"course":       Education,
		"training":     Education,
		"notary bond":  Insurance,
		"e&o":          Insurance,
		"commission":   LicensesAndFees,
		"license":      LicensesAndFees,
		"licenses":     LicensesAndFees,
		"stamp":        OfficeSupplies,
		"supplies":     OfficeSupplies,
		"printing":     PrintingAndPaper,
		"paper":        PrintingAndPaper,
		"toner":        PrintingAndPaper,
		"saas":         SoftwareAndApps,
		"subscription": SoftwareAndApps,
		"software":     SoftwareAndApps,
		"uber":         TravelExpenses,
		"lyft":         TravelExpenses,
		"parking":      TravelExpenses,
		"tolls":        TravelExpenses,
		"hotel":        TravelExpenses,
		"travel":       TravelExpenses,
		"food":         Meals,
		"restaurant":   Meals,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
