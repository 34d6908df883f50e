package storage

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"unicode"

	"github.com/davecgh/go-spew/spew"

	"github.com/tuannm99/novacore/internal/alias/bx"
)

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Fprintf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

func (e *errWriter) Fprintln(a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, a...)
}

// ASCII preview: printable -> itself, else '.'
func asciiPreview(b []byte) string {
	var buf bytes.Buffer
	for _, c := range b {
		r := rune(c)
		if unicode.IsPrint(r) && r != '\n' && r != '\r' && r != '\t' {
			buf.WriteRune(r)
		} else {
			buf.WriteByte('.')
		}
	}
	return buf.String()
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Debug prints the header bitmap and the occupied slots to the writer.
func (p *HeapPage) Debug(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.Fprintf("=== HeapPage Debug ===\n")
	ew.Fprintf("pageID=%s pageSize=%d tupleSize=%d numSlots=%d empty=%d\n",
		p.pid, p.pageSize, p.td.Size(), p.NumSlots(), p.NumEmptySlots())
	ew.Fprintf("schema: %s\n", p.td)

	ew.Fprintln("\n-- Header --")
	ew.Fprintf("hex=%s\n", hex.EncodeToString(p.header))

	ew.Fprintln("\n-- Slots --")
	used := 0
	for slot, t := range p.tuples {
		if ew.err != nil {
			break
		}
		if !bx.Bit(p.header, slot) {
			continue
		}
		used++
		ew.Fprintf("[%d] %q\n", slot, asciiPreview([]byte(t.String())))
		ew.Fprintf("%s", dumpConfig.Sdump(t.Fields()))
	}
	if used == 0 {
		ew.Fprintln("(none)")
	}

	ew.Fprintln("=== End HeapPage Debug ===")
	return ew.err
}

func (p *HeapPage) DebugString() string {
	var b bytes.Buffer
	if err := p.Debug(&b); err != nil {
		// best-effort: surface the error in the output so callers see it
		_, _ = b.WriteString("\n<debug write error: " + err.Error() + ">\n")
	}
	return b.String()
}
