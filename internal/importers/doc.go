// Package importers turns decoded spreadsheet cells into candidate records.
//
// # Architecture
//
// The import flow is:
//
//	File → Sheet decoder → [][]string → DetectHeader → Extract → []entities.CandidateRecord
//
// Decoders (ReadCSV, ReadXLSX, ReadJSONRows) only produce cells. Everything
// after that is format independent: the header classifier finds the header
// row with a declarative alias table, and the extractor normalizes each row
// below it. Merging candidates into persisted collections is done by the
// catalog and ledger packages, never here.
//
// # Modes
//
// ModeCatalog requires an identifier column (ISBN, EAN, barcode, code).
// ModeSales additionally requires a quantity column and rejects rows whose
// quantity is not strictly positive.
//
// # Errors
//
// A sheet without a recognizable header fails with a *SchemaNotFoundError
// naming the missing columns. A sheet without rows, or without a single
// valid row, fails with ErrEmptyInput. Individual invalid rows are not
// errors; they are counted in ExtractResult.Rejected.
//
// # Example Usage
//
//	sheet, err := importers.DecodeFile("estoque.xlsx", file, "")
//	result, err := importers.Parse(sheet, importers.ModeCatalog)
//	newCatalog, report := catalog.Merge(existing, result.Candidates)
package importers
