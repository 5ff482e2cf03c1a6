package xmldiff

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// xmlNamespaceURI is the implicit namespace every xml: prefix resolves
// to, per the XML Namespaces recommendation -- etree never declares it,
// so conversion never emits it as an xmlns attribute either.
const xmlNamespaceURI = "http://www.w3.org/XML/1998/namespace"

// nsScope is a stack of prefix->URI bindings in effect while walking
// down an etree tree. beevik/etree tracks only the literal prefix text
// on each element/attribute (Space), not the resolved namespace URI, so
// this package resolves URIs itself during conversion, the way a
// namespace-aware XML binding normally would.
type nsScope struct {
	parent *nsScope
	binds  map[string]string
}

func (s *nsScope) resolve(prefix string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if uri, ok := cur.binds[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// childScope returns the scope in effect for e's children: parent plus
// any xmlns declarations e itself carries.
func childScope(parent *nsScope, e *etree.Element) *nsScope {
	var binds map[string]string
	for _, a := range e.Attr {
		switch {
		case a.Space == "xmlns":
			if binds == nil {
				binds = map[string]string{}
			}
			binds[a.Key] = a.Value
		case a.Space == "" && a.Key == "xmlns":
			if binds == nil {
				binds = map[string]string{}
			}
			binds[""] = a.Value
		}
	}
	if binds == nil {
		return parent
	}
	return &nsScope{parent: parent, binds: binds}
}

func resolveElementQName(e *etree.Element, scope *nsScope) QName {
	if e.Space == "" {
		if uri, ok := scope.resolve(""); ok {
			return QName{Space: uri, Local: e.Tag}
		}
		return QName{Local: e.Tag}
	}
	if e.Space == "xml" {
		return QName{Space: xmlNamespaceURI, Local: e.Tag}
	}
	if uri, ok := scope.resolve(e.Space); ok {
		return QName{Space: uri, Local: e.Tag}
	}
	// Undeclared prefix: fall back to the literal prefix rather than
	// silently dropping it, so round-tripping malformed input doesn't
	// lose information.
	return QName{Space: e.Space, Local: e.Tag}
}

func resolveAttrQName(a etree.Attr, scope *nsScope) QName {
	// Unprefixed attributes are never in a namespace, unlike elements.
	if a.Space == "" {
		return QName{Local: a.Key}
	}
	if a.Space == "xml" {
		return QName{Space: xmlNamespaceURI, Local: a.Key}
	}
	if uri, ok := scope.resolve(a.Space); ok {
		return QName{Space: uri, Local: a.Key}
	}
	return QName{Space: a.Space, Local: a.Key}
}

// buildNode converts an etree.Element subtree into this package's Node
// model. tree is optional; when non-nil, new nodes get ids minted from
// it. The parse entry points pass nil and let NewTree assign ids to the
// finished subtree.
func buildNode(e *etree.Element, parentScope *nsScope, tree *Tree) *Node {
	scope := childScope(parentScope, e)

	var n *Node
	if tree != nil {
		n = tree.NewNode(resolveElementQName(e, scope))
	} else {
		n = &Node{tag: resolveElementQName(e, scope), attrs: NewAttrs()}
	}

	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		n.attrs.Set(resolveAttrQName(a, scope), a.Value)
	}

	n.text = e.Text()
	for _, c := range e.ChildElements() {
		child := buildNode(c, scope, tree)
		child.tail = c.Tail()
		n.AppendChild(child)
	}
	return n
}

// nsRegistry assigns serialization-time prefixes to namespace URIs,
// reusing "xml" and "diff" for their well-known URIs and minting ns1,
// ns2, ... for anything else encountered.
type nsRegistry struct {
	uriToPrefix map[string]string
	next        int
}

func newNSRegistry() *nsRegistry {
	r := &nsRegistry{uriToPrefix: map[string]string{}}
	r.uriToPrefix[DiffNamespace] = "diff"
	return r
}

func (r *nsRegistry) prefixFor(uri string) string {
	if uri == xmlNamespaceURI {
		return "xml"
	}
	if p, ok := r.uriToPrefix[uri]; ok {
		return p
	}
	r.next++
	p := fmt.Sprintf("ns%d", r.next)
	r.uriToPrefix[uri] = p
	return p
}

func qnameToElementTag(q QName, reg *nsRegistry) string {
	if q.Space == "" {
		return q.Local
	}
	return reg.prefixFor(q.Space) + ":" + q.Local
}

func qnameToAttrKey(q QName, reg *nsRegistry) string {
	if q.Space == "" {
		return q.Local
	}
	return reg.prefixFor(q.Space) + ":" + q.Local
}

// ToEtreeDocument renders n as a fresh etree.Document, registering the
// diff namespace prefix on the root as spec.md §4.6 directs, plus a
// prefix for any other namespace URI the tree actually uses.
func ToEtreeDocument(n *Node) *etree.Document {
	doc := etree.NewDocument()
	reg := newNSRegistry()

	rootEl := doc.CreateElement(qnameToElementTag(n.Tag(), reg))
	populateEtree(rootEl, n, reg)

	for uri, prefix := range reg.uriToPrefix {
		rootEl.CreateAttr("xmlns:"+prefix, uri)
	}
	return doc
}

func populateEtree(e *etree.Element, n *Node, reg *nsRegistry) {
	for _, name := range n.Attrs().Names() {
		v, _ := n.Attrs().Get(name)
		e.CreateAttr(qnameToAttrKey(name, reg), v)
	}
	e.SetText(n.Text())
	e.SetTail(n.Tail())
	for _, c := range n.Children() {
		ce := e.CreateElement(qnameToElementTag(c.Tag(), reg))
		populateEtree(ce, c, reg)
	}
}

// RenderXML serializes n through etree, optionally indenting for
// readability (spec.md §6's --pretty-print flag).
func RenderXML(n *Node, pretty bool) (string, error) {
	doc := ToEtreeDocument(n)
	if pretty {
		doc.Indent(2)
	}
	return doc.WriteToString()
}

// ParseTree reads XML from r into a Tree.
func ParseTree(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: MalformedXML, Op: "ParseTree", Err: err}
	}
	return parseBytes(data, "ParseTree")
}

// ParseTreeString parses an XML document from a string into a Tree.
func ParseTreeString(s string) (*Tree, error) {
	return parseBytes([]byte(s), "ParseTreeString")
}

// ParseTreeFile reads and parses an XML document from path into a Tree.
func ParseTreeFile(path string) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, &Error{Kind: MalformedXML, Op: "ParseTreeFile", Err: err}
	}
	return treeFromDocument(doc, "ParseTreeFile")
}

func parseBytes(data []byte, op string) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &Error{Kind: MalformedXML, Op: op, Err: err}
	}
	return treeFromDocument(doc, op)
}

func treeFromDocument(doc *etree.Document, op string) (*Tree, error) {
	root := doc.Root()
	if root == nil {
		return nil, &Error{Kind: InputShape, Op: op, Err: errf("document has no root element")}
	}
	return NewTree(buildNode(root, nil, nil)), nil
}
