// Package pdflink extracts link targets from the annotations of a PDF.
//
// Every page's /Annots array is scanned. A link annotation's action
// dictionary (/A) yields a target from its /URI entry or, failing that, its
// /F file reference. GoTo actions and /Dest links jump inside the document
// and are ignored. Any other action is reported as malformed so that the
// caller can flag it without aborting the scan.
//
// Parsing is done with github.com/ledongthuc/pdf. That library panics on
// some corrupt object graphs; Extract recovers and returns ErrOpen instead.
package pdflink
