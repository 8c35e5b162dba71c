// Package regions maps French regions to the codes of their departments.
package regions

import "slices"

type region struct {
	name        string
	departments []string
}

var regions = []region{
	{"Auvergne-Rhône-Alpes", []string{"01", "03", "07", "15", "26", "38", "42", "43", "63", "69", "73", "74"}},
	{"Bourgogne-Franche-Comté", []string{"21", "25", "39", "58", "70", "71", "89", "90"}},
	{"Bretagne", []string{"22", "29", "35", "56"}},
	{"Centre-Val de Loire", []string{"18", "28", "36", "37", "41", "45"}},
	{"Corse", []string{"2A", "2B"}},
	{"Grand Est", []string{"08", "10", "51", "52", "54", "55", "57", "67", "68", "88"}},
	{"Hauts-de-France", []string{"02", "59", "60", "62", "80"}},
	{"Île-de-France", []string{"75", "77", "78", "91", "92", "93", "94", "95"}},
	{"Normandie", []string{"14", "27", "50", "61", "76"}},
	{"Nouvelle-Aquitaine", []string{"16", "17", "19", "23", "24", "33", "40", "47", "64", "79", "86", "87"}},
	{"Occitanie", []string{"09", "11", "12", "30", "31", "32", "34", "46", "48", "65", "66", "81", "82"}},
	{"Pays de la Loire", []string{"44", "49", "53", "72", "85"}},
	{"Provence-Alpes-Côte d'Azur", []string{"04", "05", "06", "13", "83", "84"}},
	{"Guadeloupe", []string{"971"}},
	{"Martinique", []string{"972"}},
	{"Guyane", []string{"973"}},
	{"La Réunion", []string{"974"}},
	{"Saint-Pierre-et-Miquelon", []string{"975"}},
	{"Mayotte", []string{"976"}},
	{"Saint-Barthélemy", []string{"977"}},
	{"Saint-Martin", []string{"978"}},
	{"Wallis-et-Futuna", []string{"986"}},
	{"Polynésie française", []string{"987"}},
	{"Nouvelle-Calédonie", []string{"988"}},
}

// Names returns the region names in display order.
func Names() []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.name
	}
	return names
}

// DepartmentCodes returns the department codes of one region, or nil.
func DepartmentCodes(name string) []string {
	for _, r := range regions {
		if r.name == name {
			return slices.Clone(r.departments)
		}
	}
	return nil
}

// DepartmentCodesForRegions returns the department codes of the named
// regions in order of appearance, without duplicates. Unknown names are
// ignored.
func DepartmentCodesForRegions(names []string) []string {
	var codes []string
	seen := map[string]bool{}
	for _, name := range names {
		for _, code := range DepartmentCodes(name) {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	return codes
}
