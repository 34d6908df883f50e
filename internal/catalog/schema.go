package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuannm99/novacore/internal/alias/util"
	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/types"
)

var ErrBadSchema = errors.New("catalog: malformed schema line")

// TableSchema is one parsed line of a schema file:
//
//	name (field type [pk], field type, ...)
type TableSchema struct {
	Name       string
	Desc       *record.TupleDesc
	PrimaryKey string
}

// ParseSchemaLine parses a single table definition.
func ParseSchemaLine(line string) (TableSchema, error) {
	line = strings.TrimSpace(line)
	open := strings.IndexByte(line, '(')
	if open <= 0 || !strings.HasSuffix(line, ")") {
		return TableSchema{}, fmt.Errorf("%w: %q", ErrBadSchema, line)
	}
	name := strings.TrimSpace(line[:open])
	body := line[open+1 : len(line)-1]

	var (
		typs  []types.Type
		names []string
		pkey  string
	)
	for _, col := range strings.Split(body, ",") {
		parts := strings.Fields(col)
		if len(parts) < 2 || len(parts) > 3 {
			return TableSchema{}, fmt.Errorf("%w: column %q", ErrBadSchema, strings.TrimSpace(col))
		}
		typ, err := types.ParseType(parts[1])
		if err != nil {
			return TableSchema{}, fmt.Errorf("%w: column %q: %w", ErrBadSchema, parts[0], err)
		}
		if len(parts) == 3 {
			if !strings.EqualFold(parts[2], "pk") {
				return TableSchema{}, fmt.Errorf("%w: unknown annotation %q", ErrBadSchema, parts[2])
			}
			pkey = parts[0]
		}
		typs = append(typs, typ)
		names = append(names, parts[0])
	}

	td, err := record.NewTupleDesc(typs, names)
	if err != nil {
		return TableSchema{}, err
	}
	return TableSchema{Name: name, Desc: td, PrimaryKey: pkey}, nil
}

// LoadSchema registers every table listed in the schema file at path. The
// data of table t lives in <dir of path>/t.dat and is created empty when
// missing. Returns the names added, in file order.
func (c *Catalog) LoadSchema(path string, pageSize int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer util.CloseFunc(f)

	dir := filepath.Dir(path)
	var added []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ts, err := ParseSchemaLine(line)
		if err != nil {
			return added, err
		}

		store, err := storage.OpenFileStore(filepath.Join(dir, ts.Name+".dat"))
		if err != nil {
			return added, err
		}
		hf, err := heap.NewHeapFile(store, ts.Desc, pageSize)
		if err != nil {
			util.CloseFunc(store)
			return added, fmt.Errorf("catalog: table %s: %w", ts.Name, err)
		}
		if err := c.AddTable(hf, ts.Name, ts.PrimaryKey); err != nil {
			util.CloseFunc(store)
			return added, err
		}
		added = append(added, ts.Name)
	}
	return added, sc.Err()
}
