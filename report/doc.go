// Package report renders a forecast run in three formats: a machine
// readable JSON summary, an Excel workbook with one sheet per table,
// and an HTML page of interactive line charts showing each series'
// history next to every model's forecast.
package report
