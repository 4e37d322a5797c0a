package pdflink

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/home2l/pdflinkcheck/internal/model"
	"github.com/ledongthuc/pdf"
)

// ErrOpen is returned when a PDF cannot be opened or parsed.
var ErrOpen = errors.New("cannot open PDF")

// Action subtypes and annotation keys used while scanning.
const (
	actionGoTo   = "GoTo"
	subtypeLink  = "Link"
	keyAnnots    = "Annots"
	keyAction    = "A"
	keyDest      = "Dest"
	keyURI       = "URI"
	keyFile      = "F"
	keySubtype   = "Subtype"
	keyS         = "S"
	missingEntry = "<no action>"
)

// fileSpecKeys are the file specification entries that name a file, in the
// order they are preferred.
var fileSpecKeys = []string{"UF", "F", "Unix", "DOS", "Mac"}

// Extraction is the result of scanning a PDF for links.
type Extraction struct {
	// Pages is the page count of the document.
	Pages int

	// Links holds every URI and file target with the pages it appears on.
	Links *model.LinkSet

	// Malformed lists link annotations whose action could not be interpreted.
	Malformed []model.MalformedAnnotation
}

// Extract opens the PDF at path and scans all of its pages for links.
// The file is closed before Extract returns.
func Extract(path string) (*Extraction, error) {
	f, err := os.Open(path) //nolint:gosec // Checking user-named documents is the point
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	return ExtractFrom(f, info.Size())
}

// ExtractFrom scans a PDF of the given size read from r.
func ExtractFrom(r io.ReaderAt, size int64) (ext *Extraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ext = nil
			err = fmt.Errorf("%w: malformed PDF: %v", ErrOpen, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	ext = &Extraction{
		Pages:     reader.NumPage(),
		Links:     model.NewLinkSet(),
		Malformed: make([]model.MalformedAnnotation, 0),
	}

	for n := 1; n <= ext.Pages; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		annots := page.V.Key(keyAnnots)
		for i := 0; i < annots.Len(); i++ {
			ext.scanAnnotation(n, annots.Index(i))
		}
	}

	return ext, nil
}

// scanAnnotation records the target of one annotation on page.
func (e *Extraction) scanAnnotation(page int, annot pdf.Value) {
	action := annot.Key(keyAction)
	if action.Kind() != pdf.Dict {
		// Without an action only link annotations matter: a /Dest is an
		// in-document jump, anything else cannot be followed at all.
		if annot.Key(keySubtype).Name() == subtypeLink && annot.Key(keyDest).IsNull() {
			e.addMalformed(page, annot, missingEntry)
		}
		return
	}

	if uri := action.Key(keyURI); !uri.IsNull() {
		if uri.Kind() != pdf.String {
			e.addMalformed(page, action, "")
			return
		}
		e.addTarget(uri.Text(), page)
		return
	}

	if file := action.Key(keyFile); !file.IsNull() {
		target, ok := fileTarget(file)
		if !ok {
			e.addMalformed(page, action, "")
			return
		}
		e.addTarget(target, page)
		return
	}

	if action.Key(keyS).Name() != actionGoTo {
		e.addMalformed(page, action, "")
	}
}

// addTarget records a non-empty target.
func (e *Extraction) addTarget(target string, page int) {
	if target == "" {
		return
	}
	e.Links.Add(target, page)
}

func (e *Extraction) addMalformed(page int, v pdf.Value, suffix string) {
	rendered := v.String()
	if suffix != "" {
		rendered += " " + suffix
	}
	e.Malformed = append(e.Malformed, model.MalformedAnnotation{Page: page, Action: rendered})
}

// fileTarget returns the file named by an /F entry, which is either a
// string or a file specification dictionary.
func fileTarget(v pdf.Value) (string, bool) {
	switch v.Kind() {
	case pdf.String:
		return v.Text(), true
	case pdf.Dict:
		for _, key := range fileSpecKeys {
			if name := v.Key(key); name.Kind() == pdf.String {
				return name.Text(), true
			}
		}
	}
	return "", false
}
