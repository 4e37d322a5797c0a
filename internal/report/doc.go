// Package report renders link check results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the console report, one ERROR line per problem
//   - MarkdownWriter: a document with summary tables for sharing
//   - JSONWriter: structured output for tool integration
//
// Report data lives in the model package. Writers implement the Writer
// interface so they can be used interchangeably and composed with
// MultiWriter.
package report
