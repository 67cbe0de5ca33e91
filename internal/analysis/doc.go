// Package analysis characterizes recorded runs.
//
//   - [PowerSpectrum]: windowed magnitude spectrum of a stats column
//   - [DominantFrequency]: strongest non-DC oscillation in a column
//   - [Describe]: mean, spread and range of a column
//   - [TearOnset]: time of the first recorded tear
//
// A lattice ringing after a pulse shows up as a clear peak in the spectrum
// of mean_strain:
//
//	freq, _, err := analysis.DominantFrequency(dynamo.StatsColumn(frames, "mean_strain"), 60)
package analysis
