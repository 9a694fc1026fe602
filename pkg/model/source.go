package model

// RowID is the stable identifier a provider assigns to a candidate row.
type RowID uint32

// Candidate is the provider's view of one completion suggestion.
type Candidate struct {
	Name             string
	Properties       Properties
	Scope            string
	InheritanceDepth int
	// Columns holds display text per Column; Columns[NameColumn] falls back to Name.
	Columns [ColumnCount]string
}

// Text returns the display text of a source column.
func (c Candidate) Text(col Column) string {
	if col < 0 || int(col) >= ColumnCount {
		return ""
	}
	if col == NameColumn && c.Columns[col] == "" {
		return c.Name
	}
	return c.Columns[col]
}

// Source is the completion provider the model filters, sorts and groups.
// Rows must stay readable until the model has been told about their removal.
type Source interface {
	// Rows enumerates the current rows in insertion order.
	Rows() []RowID
	// Candidate returns the attributes of a row; false when the id has no backing data.
	Candidate(id RowID) (Candidate, bool)
	// ContextMatches reports whether the row matches the completion context.
	ContextMatches(id RowID) bool
}
