// Package viz renders capture runs in the terminal.
//
//   - [Spectrum]: asciigraph plot of the summed-energy histogram
//   - [ProgressModel]: Bubble Tea view of a run in progress
//   - [SummaryTable]: styled run statistics
//
// # Key Bindings
//
//	q, Ctrl+C - abort the run
package viz
