package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tuannm99/novacore/internal/alias/util"
	"github.com/tuannm99/novacore/internal/catalog"
	"github.com/tuannm99/novacore/internal/engine"
	"github.com/tuannm99/novacore/internal/execution"
)

var errUsage = errors.New("usage")

const helpText = `commands:
  tables                                   list tables
  create <name> (<col> <type> [pk], ...)   create a table
  import <table> <file> [sep]              append rows from a text file (sep default ",")
  scan <table> [alias]                     print every row
  agg <table> <op> <col> [group-col]       min|max|sum|avg|count|sum_count
  \help                                    show help
  \q | quit | exit                         quit`

// runCommand executes one shell line against db and writes the outcome to w.
func runCommand(db *engine.Database, line string, w io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "tables":
		return listTables(db, w)

	case "create":
		ts, err := catalog.ParseSchemaLine(strings.TrimSpace(line[len(fields[0]):]))
		if err != nil {
			return err
		}
		if _, err := db.CreateTable(ts.Name, ts.Desc, ts.PrimaryKey); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "OK %s\n", ts.Name)
		return err

	case "import":
		if len(fields) < 3 || len(fields) > 4 {
			return fmt.Errorf("%w: import <table> <file> [sep]", errUsage)
		}
		sep := ","
		if len(fields) == 4 {
			sep = fields[3]
		}
		f, err := os.Open(fields[2])
		if err != nil {
			return err
		}
		defer util.CloseFunc(f)
		n, err := db.Import(fields[1], f, sep)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "OK (%d rows)\n", n)
		return err

	case "scan":
		if len(fields) < 2 || len(fields) > 3 {
			return fmt.Errorf("%w: scan <table> [alias]", errUsage)
		}
		alias := ""
		if len(fields) == 3 {
			alias = fields[2]
		}
		tid := db.Begin()
		defer db.Commit(tid)
		scan, err := db.Scan(tid, fields[1], alias)
		if err != nil {
			return err
		}
		return collectAndPrint(scan, w)

	case "agg":
		if len(fields) < 4 || len(fields) > 5 {
			return fmt.Errorf("%w: agg <table> <op> <col> [group-col]", errUsage)
		}
		op, err := execution.ParseAggregateOp(fields[2])
		if err != nil {
			return err
		}
		tid := db.Begin()
		defer db.Commit(tid)
		scan, err := db.Scan(tid, fields[1], fields[1])
		if err != nil {
			return err
		}
		aField, err := columnIndex(scan, fields[3])
		if err != nil {
			return err
		}
		gField := execution.NoGrouping
		if len(fields) == 5 {
			if gField, err = columnIndex(scan, fields[4]); err != nil {
				return err
			}
		}
		agg, err := execution.NewAggregate(scan, aField, gField, op)
		if err != nil {
			return err
		}
		return collectAndPrint(agg, w)

	default:
		return fmt.Errorf("unknown command %q (try \\help)", fields[0])
	}
}

// columnIndex accepts a bare column name or the aliased "table.col".
func columnIndex(scan *execution.SeqScan, name string) (int, error) {
	if !strings.Contains(name, ".") {
		name = scan.Alias() + "." + name
	}
	return scan.TupleDesc().FieldNameToIndex(name)
}

func listTables(db *engine.Database, w io.Writer) error {
	res := &execution.Result{Columns: []string{"id", "name", "pages", "columns"}}
	for _, id := range db.Catalog.TableIDs() {
		meta, err := db.Catalog.Describe(id)
		if err != nil {
			return err
		}
		cols := make([]string, len(meta.Columns))
		for i, c := range meta.Columns {
			cols[i] = c.String()
		}
		res.Rows = append(res.Rows, []any{meta.ID, meta.Name, meta.PageCount, strings.Join(cols, ", ")})
	}
	printResult(w, res)
	return nil
}

func collectAndPrint(op execution.OpIterator, w io.Writer) error {
	res, err := execution.Collect(op)
	if err != nil {
		return err
	}
	printResult(w, res)
	return nil
}

func printResult(w io.Writer, res *execution.Result) {
	cols := res.Columns
	cell := func(row []any, i int) string {
		if i < len(row) && row[i] != nil {
			return fmt.Sprintf("%v", row[i])
		}
		return "NULL"
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range res.Rows {
		for i := range cols {
			widths[i] = max(widths[i], len(cell(row, i)))
		}
	}

	printRow := func(values []string) {
		for i := range cols {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, padRight(values[i], widths[i]))
		}
		fmt.Fprintln(w)
	}

	printRow(cols)
	for i := range cols {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)

	for _, row := range res.Rows {
		out := make([]string, len(cols))
		for i := range cols {
			out[i] = cell(row, i)
		}
		printRow(out)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
