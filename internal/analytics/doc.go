// Package analytics derives the dashboard views from a ranked enrollment
// table: the filtered rows, headline summary, top-N bars, per-period
// evolution lines and the per-institution distribution.
package analytics
