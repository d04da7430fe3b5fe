// Package analysis post-processes the per-frame metric series of a run.
//
//   - [PowerSpectrum]: windowed magnitude spectrum of a series
//   - [DominantFrequency]: strongest non-DC oscillation, in Hz
//   - [SettleTime]: when a series stops leaving a band around its final value
//   - [Summarize]: min, max, mean and final value
//
// # Oscillation
//
// A hanging sheet swings after release. Its sag series shows the swing:
//
//	hz := analysis.DominantFrequency(res.Series["sag"], fps)
//	settled, ok := analysis.SettleTime(res.Series["sag"], res.Times, 0.01)
package analysis
