// Package main provides the entry point for the pdflinkcheck CLI.
//
// pdflinkcheck extracts every hyperlink from PDF documents and reports
// links to web pages that cannot be fetched and local files that do not
// exist.
//
// Usage:
//
//	pdflinkcheck                      # check the default documents
//	pdflinkcheck -B .. book.pdf       # check book.pdf, local links under ..
//
// See --help for all available options.
package main

func main() {
	Execute()
}
