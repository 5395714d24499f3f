// ABOUTME: Video conversion package
// ABOUTME: Scales decoded frames for display
// Package video converts decoded frames into images a display can show.
//
// Example:
//
//	w, h := video.Fit(frameWidth, frameHeight, 96, 80)
//	s := video.NewScaler(w, h)
//	img, err := s.Scale(frame)
package video
