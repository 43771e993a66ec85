package encounter

import "github.com/gyeh/chargeflow/internal/model"

// Group is the set of rows billed as one encounter.
type Group struct {
	Key  model.GroupKey
	Rows []*model.Row
}

// Groupable reports whether row carries every field a GroupKey needs plus
// the patient name written by Phase 1.
func Groupable(row *model.Row) bool {
	return row.Get(model.FieldPatientID) != "" &&
		row.Get(model.FieldDOS) != "" &&
		row.Get(model.FieldPractice) != "" &&
		row.Get(model.FieldPatientName) != ""
}

// KeyOf returns the GroupKey of row. Values are compared as written, after
// trimming.
func KeyOf(row *model.Row) model.GroupKey {
	return model.GroupKey{
		PatientID: row.Get(model.FieldPatientID),
		DOS:       row.Get(model.FieldDOS),
		Practice:  row.Get(model.FieldPractice),
	}
}

// GroupRows partitions the groupable rows by GroupKey. Groups are returned
// in order of first appearance and keep their rows in input order.
func GroupRows(rows []*model.Row) []*Group {
	var groups []*Group
	index := make(map[model.GroupKey]*Group)
	for _, row := range rows {
		if !Groupable(row) {
			continue
		}
		key := KeyOf(row)
		g, ok := index[key]
		if !ok {
			g = &Group{Key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.Rows = append(g.Rows, row)
	}
	return groups
}
