// Package cli implements the command-line interface for dira-lottery.
//
// The cli package provides the Cobra-based command tree. Commands load lottery
// records and the local-housing table from the data directory, enrich them,
// fetch registrant counts from the Dira API in batches, merge everything into
// grid rows and print them as text or JSON. The report command can also write
// the rows and their column schema to an export file for the grid.
package cli
