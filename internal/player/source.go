// ABOUTME: Packet sources feeding the pipeline
// ABOUTME: Single and Split variants describing where packets come from and where they go
package player

import (
	"github.com/Resonate-Protocol/reel/internal/queue"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// PacketQueue carries packets from the reader to the dispatcher
type PacketQueue = queue.Ring[*media.Packet]

// NewPacketQueue creates a packet queue with the given capacity
func NewPacketQueue(capacity int) *PacketQueue {
	return queue.New[*media.Packet](capacity)
}

// Source is either Single or Split
type Source interface {
	queues() []*PacketQueue
	feeds(video, audio media.StreamInfo) []*feed
	close() error
}

// Single reads both streams from one demuxer into one packet queue
type Single struct {
	Demuxer media.Demuxer
	Queue   *PacketQueue
}

// Split reads video and audio from separate demuxers, each into its own
// packet queue. Every packet of the audio demuxer is treated as audio.
type Split struct {
	Video      media.Demuxer
	Audio      media.Demuxer
	VideoQueue *PacketQueue
	AudioQueue *PacketQueue
}

func (s Single) queues() []*PacketQueue {
	return []*PacketQueue{s.Queue}
}

func (s Single) feeds(video, audio media.StreamInfo) []*feed {
	return []*feed{{
		name:  "source",
		demux: s.Demuxer,
		queue: s.Queue,
		tag: func(index int) int {
			switch index {
			case video.Index:
				return media.VideoStream
			case audio.Index:
				return media.AudioStream
			default:
				return -1
			}
		},
		ends: []int{media.VideoStream, media.AudioStream},
	}}
}

func (s Single) close() error {
	return s.Demuxer.Close()
}

func (s Split) queues() []*PacketQueue {
	return []*PacketQueue{s.VideoQueue, s.AudioQueue}
}

func (s Split) feeds(video, _ media.StreamInfo) []*feed {
	return []*feed{
		{
			name:  "video source",
			demux: s.Video,
			queue: s.VideoQueue,
			tag: func(index int) int {
				if index == video.Index {
					return media.VideoStream
				}
				return -1
			},
			ends: []int{media.VideoStream},
		},
		{
			name:  "audio source",
			demux: s.Audio,
			queue: s.AudioQueue,
			tag:   func(int) int { return media.AudioStream },
			ends:  []int{media.AudioStream},
		},
	}
}

func (s Split) close() error {
	verr := s.Video.Close()
	aerr := s.Audio.Close()
	if verr != nil {
		return verr
	}
	return aerr
}
