package xmldiff

import "testing"

// Scenario 6 -- inline formatting diff via placeholders. A word inside
// a preserved formatting element changes, and a new word is appended
// just after it: the formatting element itself must survive as a
// single element carrying both the deleted and inserted runs, with the
// appended word showing up as its own inserted sibling content.
func TestScenario6InlineFormattingDiff(t *testing.T) {
	paraTag := QName{Local: "para"}
	bTag := QName{Local: "b"}

	left := mustParse(t, `<doc><para>hello <b>world</b></para></doc>`)
	right := mustParse(t, `<doc><para>hello <b>brave</b> world</para></doc>`)

	f := NewDiffFormatter(WithTextTags(paraTag), WithFormattingTags(bTag))
	out, _, err := New().DiffAndFormat(left, right, f)
	if err != nil {
		t.Fatal(err)
	}

	docChildren := out.Children()
	if len(docChildren) != 1 || docChildren[0].Tag() != paraTag {
		t.Fatalf("want a single <para> child of <doc>, got %+v", docChildren)
	}
	para := docChildren[0]
	if para.Text() != "hello " {
		t.Errorf("want <para> leading text %q, got %q", "hello ", para.Text())
	}

	pc := para.Children()
	if len(pc) != 2 {
		t.Fatalf("want exactly 2 children under <para> (preserved <b>, then an inserted tail run), got %d: %+v", len(pc), pc)
	}

	b := pc[0]
	if b.Tag() != bTag {
		t.Fatalf("want the first <para> child to be the preserved <b>, got %v", b.Tag())
	}
	bc := b.Children()
	if len(bc) != 2 {
		t.Fatalf("want exactly 2 children under <b> (a delete run, then an insert run), got %d: %+v", len(bc), bc)
	}
	if bc[0].Tag() != diffDeleteTag || bc[0].Text() != "world" {
		t.Errorf("want <diff:delete>world</diff:delete> first under <b>, got tag=%v text=%q", bc[0].Tag(), bc[0].Text())
	}
	if bc[1].Tag() != diffInsertTag || bc[1].Text() != "brave" {
		t.Errorf("want <diff:insert>brave</diff:insert> second under <b>, got tag=%v text=%q", bc[1].Tag(), bc[1].Text())
	}

	tail := pc[1]
	if tail.Tag() != diffInsertTag || tail.Text() != " world" {
		t.Errorf("want a trailing <diff:insert> of %q after <b>, got tag=%v text=%q", " world", tail.Tag(), tail.Text())
	}
}

// Placeholder round trip: substituting a text-tag subtree down to
// placeholder-bearing text and then expanding it back reproduces the
// original subtree structurally, including a nested formatting span, a
// non-formatting element collapsed whole, and the tail text around
// each (spec.md §8's quantified "placeholder round trip" property).
func TestPlaceholderRoundTrip(t *testing.T) {
	paraTag := QName{Local: "para"}
	bTag := QName{Local: "b"}
	iTag := QName{Local: "i"}

	original := mustParse(t, `<doc><para>hello <b>world <i>nested</i> tail</b> more<x a="1"/>end</para></doc>`)
	working := original.Clone(nil)

	ph := NewPlaceholders()
	ph.Substitute(working, []QName{paraTag}, []QName{bTag, iTag})

	para := working.Children()[0]
	if !ph.HasPlaceholder(para.Text()) {
		t.Fatal("want the collapsed <para> text to carry placeholder code points")
	}
	if len(para.Children()) != 0 {
		t.Fatalf("want <para> to have no element children after substitution, got %+v", para.Children())
	}

	expandPlaceholders(working, ph)

	if !structurallyEqual(working, original) {
		t.Errorf("placeholder round trip did not reproduce the original subtree:\ngot:  %s\nwant: %s",
			serializeNode(working), serializeNode(original))
	}
}
