package catalog

import (
	"github.com/tuannm99/novacore/internal/record"
)

// TableMeta is a read-only summary of one registered table.
type TableMeta struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	PrimaryKey string          `json:"primary_key"`
	Path       string          `json:"path"`
	PageCount  int             `json:"page_count"`
	Columns    []record.TDItem `json:"columns"`
}
