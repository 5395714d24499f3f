// ABOUTME: Media pipeline fundamentals package
// ABOUTME: Defines packets, frames, stream descriptors and collaborator interfaces
// Package media provides the types that flow through the playback pipeline and the
// interfaces of its external collaborators.
//
// Data types:
//   - Packet: an encoded unit tagged with a stream index and presentation timestamp
//   - VideoFrame, AudioFrame: decoded units produced by a Decoder
//   - StreamInfo: what a Demuxer knows about each stream
//
// Collaborators:
//   - Demuxer: yields packets from a locator
//   - Decoder: send one packet, receive zero or more frames
//   - Scaler, Resampler: convert decoded units to the fixed output formats
//   - Display, AudioSink: "ready for next chunk" and "submit chunk"
//
// Example:
//
//	dec, err := codec.NewVideoDecoder(info)
//	if err := dec.Send(pkt); err != nil { ... }
//	for {
//	    frame, err := dec.Receive()
//	    if errors.Is(err, media.ErrAgain) { break }
//	    ...
//	}
package media
