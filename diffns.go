package xmldiff

// DiffNamespace is the XML namespace the annotating formatter marks up
// elements and attributes in (spec.md §6).
const DiffNamespace = "http://namespaces.shoobx.com/diff"

// Diff namespace element and attribute names the annotating formatter
// uses, gathered here since both it and the placeholder allocator (for
// the pre-allocated insert/delete wrapper pairs) need them.
var (
	diffInsertTag = QName{Space: DiffNamespace, Local: "insert"} // <diff:insert> wrapper element
	diffDeleteTag = QName{Space: DiffNamespace, Local: "delete"} // <diff:delete> wrapper element

	diffInsertMarker = QName{Space: DiffNamespace, Local: "insert"} // diff:insert="" element attribute
	diffDeleteMarker = QName{Space: DiffNamespace, Local: "delete"} // diff:delete="" element attribute

	diffAddAttrAttr    = QName{Space: DiffNamespace, Local: "add-attr"}
	diffDeleteAttrAttr = QName{Space: DiffNamespace, Local: "delete-attr"}
	diffUpdateAttrAttr = QName{Space: DiffNamespace, Local: "update-attr"}
	diffRenameAttrAttr = QName{Space: DiffNamespace, Local: "rename-attr"}

	diffInsertFormatting = QName{Space: DiffNamespace, Local: "insert-formatting"}
	diffDeleteFormatting = QName{Space: DiffNamespace, Local: "delete-formatting"}
)
