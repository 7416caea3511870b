// Package storage reads the dashboard's input files and writes its exports.
//
// Lottery records load from a JSON array or a CSV file with a header row.
// The local-housing table loads from a JSON object, a CSV file or a saved HTML
// page containing a table. Relative paths resolve against the data directory,
// which defaults to ~/.local/share/dira-lottery/. The subscriber cache is kept
// there as JSON between runs.
package storage
