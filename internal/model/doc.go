// Package model defines the data structures shared by the extractor, the
// checker and the report writers.
//
// This package contains the following main types:
//   - LinkSet: link targets of a PDF with the pages each one appears on
//   - MalformedAnnotation: a link annotation whose action cannot be interpreted
//   - LinkResult: the outcome of checking one target
//   - FileReport: everything found while checking one PDF
//   - RunReport: the reports of one program run
//
// The models carry JSON tags so report writers can serialize them directly.
package model
