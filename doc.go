// Package xmldiff computes a semantic diff between two XML documents
// and renders the result either as an ordered edit script or as an
// annotated XML tree carrying inline markup for inserted, deleted,
// moved, renamed, and updated content.
//
// It targets structured documents -- contracts, reports, templates --
// where content is mixed text and markup and where identifying moves
// and renames, not merely line-wise insert/delete, is what makes a
// diff useful. A line-oriented diff of serialized XML treats
// reordering a paragraph or renumbering an attribute as wholesale
// deletion plus insertion; this package matches elements by identity
// and content similarity first, so the edit script it produces
// describes what actually changed.
//
// The edit-script algorithm is the Chawathe-style tree diff (match,
// then insert/update/move/align breadth-first, then delete), adapted
// for native XML trees with mixed text content and namespace-qualified
// attributes.
//
// Three stages do the work: a Matcher pairs up corresponding elements
// across the two trees by a unique-id fast path and a leaf/child
// similarity ratio; a Generator walks the matched pair to emit the
// edit script (insert, delete, move, attribute and text operations);
// and a Formatter turns that script into either the wire form
// (WriteLines) or an annotated tree carrying diff namespace markup
// (DiffFormatter). DiffTrees, DiffTexts, and DiffFiles wire all three
// together for the common cases.
package xmldiff
