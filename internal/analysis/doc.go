// Package analysis inspects recorded runs.
//
//   - [PowerSpectrum]: magnitude spectrum of a series, used on frame intervals
//     to expose periodic stutter
//   - [DominantPeriod]: strongest non-DC period of a series, in samples
//   - [Summarize]: mean, spread and quantiles of a series
//   - [SummarizeRun]: per-run summary of intervals, fps and population
//
// A run whose population has converged shows a flat interval spectrum:
//
//	spec := analysis.PowerSpectrum(analysis.FrameIntervals(frames))
package analysis
