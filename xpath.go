package xmldiff

import (
	"strconv"
	"strings"
)

// CanonicalXPath builds the canonical path spec.md §4.1 describes:
// "/q1[i1]/q2[i2]/..." where qk is the qualified tag and ik is the
// 1-based position among siblings sharing that qualified tag. A
// predicate is always appended, even when a node is unambiguous without
// one, so downstream lookups can treat every segment uniformly.
func CanonicalXPath(n *Node) string {
	var segs []string
	for cur := n; cur != nil; cur = cur.parent {
		segs = append([]string{xpathSegment(cur)}, segs...)
	}
	return "/" + strings.Join(segs, "/")
}

func xpathSegment(n *Node) string {
	idx := 1
	if n.parent != nil {
		for _, sib := range n.parent.children {
			if sib == n {
				break
			}
			if sib.tag == n.tag {
				idx++
			}
		}
	}
	return n.tag.String() + "[" + strconv.Itoa(idx) + "]"
}

// ResolveXPath walks the canonical form CanonicalXPath produces against
// root, returning the single element it names. XPath resolution here is
// strict: it resolves only the "/tag[n]/tag[n]/..." grammar this package
// emits, not a general XPath expression language (see DESIGN.md for why
// a general engine isn't wired in). Zero or ambiguous resolution within
// a single segment is an XPathAmbiguous error, exactly as spec.md §4.6
// requires of the formatter's lookups.
func ResolveXPath(root *Node, xpath string) (*Node, error) {
	segs, err := splitXPath(xpath)
	if err != nil {
		return nil, err
	}
	cur := root
	for i, seg := range segs {
		tag, pos, err := parseXPathSegment(seg)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			// root segment must name the root itself
			if cur.tag != tag {
				return nil, &Error{Kind: XPathAmbiguous, Op: "ResolveXPath",
					Err: errf("xpath %q: root tag mismatch, have %s want %s", xpath, cur.tag, tag)}
			}
			continue
		}
		var match *Node
		count := 0
		for _, c := range cur.children {
			if c.tag == tag {
				count++
				if count == pos {
					match = c
				}
			}
		}
		if match == nil {
			return nil, &Error{Kind: XPathAmbiguous, Op: "ResolveXPath",
				Err: errf("xpath %q: no element at segment %q (found %d candidates, want index %d)", xpath, seg, count, pos)}
		}
		cur = match
	}
	return cur, nil
}

func splitXPath(xpath string) ([]string, error) {
	if !strings.HasPrefix(xpath, "/") {
		return nil, &Error{Kind: XPathAmbiguous, Op: "ResolveXPath", Err: errf("xpath %q: must be absolute", xpath)}
	}
	trimmed := strings.TrimPrefix(xpath, "/")
	if trimmed == "" {
		return nil, &Error{Kind: XPathAmbiguous, Op: "ResolveXPath", Err: errf("xpath %q: empty path", xpath)}
	}
	// Split only at "]/" segment boundaries: a namespace URI inside a
	// segment's tag ("http://...") may contain '/' of its own.
	segs := strings.Split(trimmed, "]/")
	for i := 0; i < len(segs)-1; i++ {
		segs[i] += "]"
	}
	return segs, nil
}

func parseXPathSegment(seg string) (QName, int, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return QName{}, 0, &Error{Kind: XPathAmbiguous, Op: "ResolveXPath", Err: errf("segment %q: missing predicate", seg)}
	}
	tagStr := seg[:open]
	idxStr := seg[open+1 : len(seg)-1]
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return QName{}, 0, &Error{Kind: XPathAmbiguous, Op: "ResolveXPath", Err: errf("segment %q: bad predicate: %v", seg, err)}
	}
	// QName.String() renders "space:local" with space being the full
	// namespace URI, which may itself contain colons ("http://..."); the
	// local name never does (XML Names restricts NCNames to excluding
	// ':'). Splitting on the last colon rather than the first recovers
	// the original (space, local) pair unambiguously either way.
	if i := strings.LastIndexByte(tagStr, ':'); i >= 0 {
		return QName{Space: tagStr[:i], Local: tagStr[i+1:]}, idx, nil
	}
	return QName{Local: tagStr}, idx, nil
}
