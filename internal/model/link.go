package model

import (
	"slices"
	"strconv"
	"strings"
)

// SchemeSeparator is the marker that makes a link target an external URL.
const SchemeSeparator = "://"

// LinkKind tells how a link target is verified.
type LinkKind int

const (
	// LinkKindLocal is a filesystem path, checked for existence.
	LinkKindLocal LinkKind = iota

	// LinkKindExternal is a URL, checked with an HTTP GET.
	LinkKindExternal
)

// String returns the lower-case name of the kind.
func (k LinkKind) String() string {
	switch k {
	case LinkKindExternal:
		return "external"
	case LinkKindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON reports carry the name.
func (k LinkKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classify returns LinkKindExternal if target contains a scheme separator
// and LinkKindLocal otherwise.
func Classify(target string) LinkKind {
	if strings.Contains(target, SchemeSeparator) {
		return LinkKindExternal
	}
	return LinkKindLocal
}

// PageSet is a set of 1-based page numbers.
type PageSet map[int]struct{}

// NewPageSet returns a PageSet holding pages.
func NewPageSet(pages ...int) PageSet {
	s := make(PageSet, len(pages))
	for _, p := range pages {
		s.Add(p)
	}
	return s
}

// Add inserts page into the set.
func (s PageSet) Add(page int) {
	s[page] = struct{}{}
}

// Contains reports whether page is in the set.
func (s PageSet) Contains(page int) bool {
	_, ok := s[page]
	return ok
}

// Len returns the number of pages in the set.
func (s PageSet) Len() int {
	return len(s)
}

// Sorted returns the pages in ascending order.
func (s PageSet) Sorted() []int {
	pages := make([]int, 0, len(s))
	for p := range s {
		pages = append(pages, p)
	}
	slices.Sort(pages)
	return pages
}

// String renders the set as a sorted list, e.g. "[3, 7]".
func (s PageSet) String() string {
	return FormatPages(s.Sorted())
}

// FormatPages renders sorted page numbers as "[3, 7]".
func FormatPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Link is a unique link target together with every page it appears on.
type Link struct {
	// Target is the string stored in the annotation.
	Target string `json:"target"`

	// Kind tells whether Target is checked as a URL or a file.
	Kind LinkKind `json:"kind"`

	// Pages are the 1-based pages the target appears on, ascending.
	Pages []int `json:"pages"`
}

// PageList renders Pages as "[3, 7]".
func (l Link) PageList() string {
	return FormatPages(l.Pages)
}

// LinkSet collects link targets and the pages they appear on.
// Identical targets are merged; Links returns them in order of first appearance.
type LinkSet struct {
	order []string
	pages map[string]PageSet
}

// NewLinkSet returns an empty LinkSet.
func NewLinkSet() *LinkSet {
	return &LinkSet{pages: make(map[string]PageSet)}
}

// Add records that target appears on page.
func (s *LinkSet) Add(target string, page int) {
	ps, ok := s.pages[target]
	if !ok {
		ps = NewPageSet()
		s.pages[target] = ps
		s.order = append(s.order, target)
	}
	ps.Add(page)
}

// Len returns the number of unique targets.
func (s *LinkSet) Len() int {
	return len(s.order)
}

// Pages returns the page set of target, or nil if target was never added.
func (s *LinkSet) Pages(target string) PageSet {
	return s.pages[target]
}

// Links returns every unique target in order of first appearance.
func (s *LinkSet) Links() []Link {
	links := make([]Link, 0, len(s.order))
	for _, target := range s.order {
		links = append(links, Link{
			Target: target,
			Kind:   Classify(target),
			Pages:  s.pages[target].Sorted(),
		})
	}
	return links
}

// MalformedAnnotation is a link annotation whose action has no URI, no file
// reference and is not an internal GoTo.
type MalformedAnnotation struct {
	// Page is the 1-based page the annotation is on.
	Page int `json:"page"`

	// Action is the action object rendered as PDF syntax.
	Action string `json:"action"`
}
