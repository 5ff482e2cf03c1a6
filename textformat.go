package xmldiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// wireVerb maps an Operation to the wire-form verb spec.md §6 documents.
// RenameAttrib has no verb of its own in that list; it is expressed as
// move-attribute, since renaming is exactly moving a value from one
// attribute name to another.
func wireVerb(op Operation) string {
	switch op {
	case OpDeleteNode:
		return "delete"
	case OpInsertNode:
		return "insert"
	case OpMoveNode:
		return "move"
	case OpUpdateTextIn:
		return "update-text"
	case OpUpdateTextAfter:
		return "update-text-after"
	case OpDeleteAttrib:
		return "delete-attribute"
	case OpInsertAttrib:
		return "insert-attribute"
	case OpUpdateAttrib:
		return "update-attribute"
	case OpRenameAttrib:
		return "move-attribute"
	default:
		return string(op)
	}
}

// wireArgs lays out an Op's JSON array, verb first, per spec.md §6.
func wireArgs(op Op) []interface{} {
	verb := wireVerb(op.Type)
	switch op.Type {
	case OpDeleteNode:
		return []interface{}{verb, op.Node}
	case OpInsertNode:
		return []interface{}{verb, op.Target, op.Position, op.Tag.String()}
	case OpMoveNode:
		return []interface{}{verb, op.Node, op.Target, op.Position}
	case OpUpdateTextIn, OpUpdateTextAfter:
		return []interface{}{verb, op.Node, op.Text}
	case OpDeleteAttrib:
		return []interface{}{verb, op.Node, op.AttrName.String()}
	case OpInsertAttrib, OpUpdateAttrib:
		return []interface{}{verb, op.Node, op.AttrName.String(), op.AttrValue}
	case OpRenameAttrib:
		return []interface{}{verb, op.Node, op.AttrOld.String(), op.AttrName.String()}
	default:
		return []interface{}{verb}
	}
}

// WriteLines renders script in the wire form spec.md §6 describes: one
// JSON array per line, strings JSON-escaped so embedded newlines
// survive.
func WriteLines(w io.Writer, script Script) error {
	enc := json.NewEncoder(w)
	for _, op := range script {
		if err := enc.Encode(wireArgs(op)); err != nil {
			return err
		}
	}
	return nil
}

// WriteLinesString is a convenience wrapper returning the wire form as
// a string instead of writing to an io.Writer.
func WriteLinesString(script Script) (string, error) {
	buf := &bytes.Buffer{}
	if err := WriteLines(buf, script); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a human-readable report of script to w, one
// operation per line. If colorTTY is true, node and attribute insertions
// are green, node and attribute deletions red, and moves, attribute
// renames, attribute updates and text updates blue.
func FormatPretty(w io.Writer, script Script, colorTTY bool) error {
	var colorMap map[Operation]string
	if colorTTY {
		colorMap = map[Operation]string{
			Operation("close"): "\x1b[0m",
			OpInsertNode:       "\x1b[32m",
			OpDeleteNode:       "\x1b[31m",
			OpInsertAttrib:     "\x1b[32m",
			OpDeleteAttrib:     "\x1b[31m",
			OpUpdateAttrib:     "\x1b[34m",
			OpRenameAttrib:     "\x1b[34m",
			OpMoveNode:         "\x1b[34m",
			OpUpdateTextIn:     "\x1b[34m",
			OpUpdateTextAfter:  "\x1b[34m",
		}
	}
	for _, op := range script {
		fmt.Fprintf(w, "%s%s%s: %s\n", colorMap[op.Type], op.Type, colorMap[Operation("close")], describeOp(op))
	}
	return nil
}

// FormatPrettyString is FormatPretty rendered to a string.
func FormatPrettyString(script Script, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, script, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func describeOp(op Op) string {
	switch op.Type {
	case OpDeleteNode:
		return op.Node
	case OpInsertNode:
		return fmt.Sprintf("%s -> %s[%d]", op.Tag, op.Target, op.Position)
	case OpMoveNode:
		return fmt.Sprintf("%s -> %s[%d]", op.Node, op.Target, op.Position)
	case OpUpdateTextIn, OpUpdateTextAfter:
		return fmt.Sprintf("%s: %q", op.Node, op.Text)
	case OpDeleteAttrib:
		return fmt.Sprintf("%s@%s", op.Node, op.AttrName)
	case OpInsertAttrib, OpUpdateAttrib:
		return fmt.Sprintf("%s@%s = %q", op.Node, op.AttrName, op.AttrValue)
	case OpRenameAttrib:
		return fmt.Sprintf("%s@%s -> @%s", op.Node, op.AttrOld, op.AttrName)
	default:
		return op.Node
	}
}
