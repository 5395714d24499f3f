// ABOUTME: Decoder package for the playback pipeline
// ABOUTME: Provides a codec registry and the raw video and PCM decoders
// Package codec provides decoders implementing media.Decoder.
//
// Supports: rawvideo (rgb24), pcm_s16le, pcm_s24le
//
// Decoders follow the send/receive contract: Send one packet, then call
// Receive until it returns media.ErrAgain. Send(nil) flushes; once drained,
// Receive returns io.EOF.
//
// Example:
//
//	dec, err := codec.OpenAudio(info)
//	err = dec.Send(pkt)
//	frame, err := dec.Receive()
package codec
