// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the output Format type and sample conversion functions
// Package audio provides fundamental audio types and utilities.
//
// Decoded audio travels through the player as int32 samples in the 24-bit
// range, whatever the source bit depth. This package converts between that
// representation and packed 16/24-bit PCM:
//   - 16-bit ↔ 24-bit conversions
//   - int32 ↔ packed byte conversions
//   - arbitrary bit depth → 24-bit range
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 48000,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//
//	// Convert 16-bit sample to 24-bit range
//	sample24 := audio.SampleFromInt16(sample16)
package audio
