// Package exporter writes finished analyses to disk.
//
// Each analysis result goes out three ways: a CSV file per table for
// downstream tooling, one Excel workbook with a sheet per analysis for
// human review, and a self-contained Vega-Lite document per chart.
// Missing cells stay empty in CSV and Excel output; they are never
// rendered as zero.
package exporter
