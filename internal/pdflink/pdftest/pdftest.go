// Package pdftest writes small, valid PDF files with link annotations for
// use in tests.
//
// Objects are serialized by hand and the cross-reference table carries the
// exact byte offset of every object, so the files load with a strict parser.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Builder accumulates pages and their annotations.
// The zero value is not usable; call New.
type Builder struct {
	pages [][]string
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Page appends a page carrying the given annotation dictionaries.
// A page without annotations has no /Annots entry at all.
func (b *Builder) Page(annots ...string) *Builder {
	b.pages = append(b.pages, annots)
	return b
}

// Pages appends n pages without annotations.
func (b *Builder) Pages(n int) *Builder {
	for range n {
		b.Page()
	}
	return b
}

// Literal encodes s as a PDF literal string.
func Literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

// LinkAnnot wraps an action dictionary in a link annotation.
func LinkAnnot(action string) string {
	return "<</Type /Annot /Subtype /Link /Rect [72 700 200 712] /Border [0 0 0] /A " + action + ">>"
}

// URILink is a link annotation opening uri.
func URILink(uri string) string {
	return LinkAnnot("<</S /URI /URI " + Literal(uri) + ">>")
}

// FileLink is a link annotation opening another document by path.
func FileLink(path string) string {
	return LinkAnnot("<</S /GoToR /F " + Literal(path) + " /D [0 /Fit]>>")
}

// FileSpecLink is like FileLink with the path wrapped in a file
// specification dictionary.
func FileSpecLink(path string) string {
	return LinkAnnot("<</S /Launch /F <</Type /Filespec /F " + Literal(path) + ">>>>")
}

// GoToLink is an internal link to a named destination.
func GoToLink(dest string) string {
	return LinkAnnot("<</S /GoTo /D " + Literal(dest) + ">>")
}

// DestLink is an internal link without an action dictionary.
func DestLink(dest string) string {
	return "<</Type /Annot /Subtype /Link /Rect [72 650 200 662] /Dest " + Literal(dest) + ">>"
}

// NamedActionLink is a link whose action has neither URI nor file and is
// not a GoTo.
func NamedActionLink(name string) string {
	return LinkAnnot("<</S /Named /N /" + name + ">>")
}

// TextNote is a sticky note annotation, which is not a link.
func TextNote(contents string) string {
	return "<</Type /Annot /Subtype /Text /Rect [10 10 30 30] /Contents " + Literal(contents) + ">>"
}

// Bytes serializes the document.
func (b *Builder) Bytes() []byte {
	// objs[i] is the body of object i+1.
	objs := []string{"<</Type /Catalog /Pages 2 0 R>>", ""}
	kids := make([]string, 0, len(b.pages))

	for _, annots := range b.pages {
		pageObj := len(objs) + 1
		objs = append(objs, "")

		refs := make([]string, 0, len(annots))
		for _, a := range annots {
			objs = append(objs, a)
			refs = append(refs, fmt.Sprintf("%d 0 R", len(objs)))
		}

		page := "<</Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources <<>>"
		if len(refs) > 0 {
			page += " /Annots [" + strings.Join(refs, " ") + "]"
		}
		objs[pageObj-1] = page + ">>"
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
	}
	objs[1] = fmt.Sprintf("<</Type /Pages /Kids [%s] /Count %d>>", strings.Join(kids, " "), len(b.pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	fmt.Fprintf(&buf, "%010d %05d f \n", 0, 65535)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d /Root 1 0 R>>\nstartxref\n%d\n", len(objs)+1, xref)
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

// Write stores the document at path.
func (b *Builder) Write(path string) error {
	return os.WriteFile(path, b.Bytes(), 0o600)
}

// WriteFile stores the document as dir/name and returns the full path.
// It fails the test on error.
func (b *Builder) WriteFile(tb testing.TB, dir, name string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := b.Write(path); err != nil {
		tb.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}
