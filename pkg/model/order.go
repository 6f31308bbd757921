package model

import "sort"

// SortedFields returns the fields sorted by their order attribute ascending.
// The sort is stable: equal orders preserve the schema's declaration order.
// The input slice is not mutated.
func SortedFields(fields []FieldDef) []FieldDef {
	out := make([]FieldDef, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// SortedSections mirrors SortedFields for section definitions.
func SortedSections(sections []SectionDef) []SectionDef {
	out := make([]SectionDef, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// PartitionBySection splits fields into per-section groups and the unsectioned
// remainder, preserving the order of the input slice within each group.
// Sectioned fields render inside their section's position; unsectioned fields
// append after all sections.
func PartitionBySection(fields []FieldDef) (map[string][]FieldDef, []FieldDef) {
	bySection := make(map[string][]FieldDef)
	var loose []FieldDef
	for _, field := range fields {
		if field.SectionID != "" {
			bySection[field.SectionID] = append(bySection[field.SectionID], field)
			continue
		}
		loose = append(loose, field)
	}
	return bySection, loose
}
