// Package dataprocessing turns the seven per-topic country CSV files into one merged,
// typed table and describes it.
//
// # Pipeline
//
//	Loader.LoadAll   read each CSV through gota (all cells as strings), type columns
//	Merge            left-join every table onto geography by Country
//	Derive           add Continent and Development_Level
//	BuildCatalog     per-domain metric info: label, min, max, mean
//
// Processor runs the whole pipeline and keeps the result as an immutable Dataset.
//
// # Column typing
//
// Columns named by a DatasetSpec rule are parsed with CleanNumeric, which strips
// thousands separators, percent signs, currency and unit suffixes and applies the
// million/billion/trillion multipliers. Other columns are numeric when every non-blank
// cell is a plain float, text otherwise. Numeric nulls are NaN; text nulls are "".
//
// # Analytics
//
// analytics.go holds the statistics behind the dashboard views: normalisation,
// composite indices, rankings, outlier detection and summary statistics. Moments and
// correlation come from gonum/stat.
package dataprocessing
