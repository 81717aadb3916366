package codegen

import (
	"fmt"
	"io"

	"github.com/andreaswalz/etplc/internal/ir"
)

// TreeDumpEmitter is the stub ParserEmitter: spec.md is explicit that
// the real code-emitter back end consuming the Validated, type-ID
// assigned Collection (generate_cpp.py's ~1000 lines of C++ templating
// in original_source) is out of scope for this middle end. This emits
// a deterministic textual dump instead, giving the CLI's -p flag
// somewhere real to write without inventing a back end this repository
// doesn't implement.
type TreeDumpEmitter struct{}

func (TreeDumpEmitter) EmitParserTree(w io.Writer, col *ir.Collection) error {
	for _, h := range col.Order {
		d := col.Def(h)
		if _, err := fmt.Fprintf(w, "type %d: %s (%s)\n", d.TypeID, d.Name, d.Data.Kind()); err != nil {
			return err
		}
		if err := emitMembers(w, col, h, 1); err != nil {
			return err
		}
	}
	return nil
}

func emitMembers(w io.Writer, col *ir.Collection, h ir.Handle, depth int) error {
	d := col.Def(h)
	members, ok := ir.Members(*d)
	if !ok {
		if elem, ok := ir.WrappedElement(*d); ok {
			return emitMembers(w, col, elem, depth)
		}
		return nil
	}
	for _, m := range members {
		md := col.Def(m)
		if _, err := fmt.Fprintf(w, "%*s%s: %s\n", depth*2, "", md.Name, md.Data.Kind()); err != nil {
			return err
		}
		if err := emitMembers(w, col, m, depth+1); err != nil {
			return err
		}
	}
	return nil
}
