// Package normalize turns raw spreadsheet cells into canonical values.
//
// Spreadsheets exported by point-of-sale systems, distributors and hand-edited
// workbooks disagree on almost everything:
//   - long numeric codes rendered in scientific notation (9.78853E+12)
//   - Brazilian and US separators in the same file ("1.234,56" vs "1,234.56")
//   - currency symbols, non-breaking spaces and Excel text prefixes
//
// Every function here is pure. Absent values are reported separately from
// zero values so callers can decide whether to touch existing data.
package normalize
