// Package linkcheck verifies the link targets extracted from a PDF.
//
// Each unique target is checked once:
//   - External targets (containing "://") are fetched with an HTTP GET and
//     count as reachable only on status 200.
//   - Local targets are file system paths. Trailing periods are stripped
//     first (see StripTrailingPeriods) and the path is looked up under the
//     document's base directory, then under the working directory.
//
// Failures never stop the scan; they are recorded in the model.FileReport
// returned by Checker.CheckFile.
package linkcheck
