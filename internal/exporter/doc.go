// Package exporter writes tabular data to disk for the Global Insights Explorer.
//
// The writers are format-level and know nothing about countries or metrics; callers hand
// them headers and rows:
//
// CSVWriter: CSV files with an optional UTF-8 BOM for Excel, plus WriteTo for answering
// HTTP requests directly.
//
// ExcelWriter: .xlsx workbooks through excelize, one sheet with a bold frozen header.
//
// JSONWriter: indented JSON documents through goccy/go-json.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths.ExportDir)
//	path, err := w.WriteCSV("countries.csv", exporter.WriteOptions{
//		Headers:   table.Names(),
//		Records:   table.Records(),
//		BOMPrefix: true,
//	})
package exporter
