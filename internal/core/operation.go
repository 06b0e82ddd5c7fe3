package core

// OperationKind is used to identify what kind of operation a generated plan holds.
type OperationKind string

const (
	OperationSQL  OperationKind = "SQL"
	OperationNote OperationKind = "NOTE"
)

// Section groups generated statements. Formatters render sections in the
// order they are declared here.
type Section string

const (
	SectionExtensions  Section = "extensions"
	SectionTypes       Section = "types"
	SectionTables      Section = "tables"
	SectionIndexes     Section = "indexes"
	SectionForeignKeys Section = "foreign_keys"
)

// Operation struct contains all information about a single generated statement,
// together with the statement that undoes it.
type Operation struct {
	Kind    OperationKind `json:"kind"`
	Section Section       `json:"section,omitempty"`

	// Table is the table the statement belongs to, empty for document-level
	// statements such as extensions and types.
	Table string `json:"table,omitempty"`

	SQL         string `json:"sql,omitempty"`
	RollbackSQL string `json:"rollbackSql,omitempty"`
}
