package webhook

import (
	"context"
	"time"
)

const TranscriptionCompletedSchemaVersion = 1

type TranscriptionSegment struct {
	Index        int     `json:"index"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Text         string  `json:"text"`
}

type TranscriptionCompletedPayload struct {
	SchemaVersion int                    `json:"schema_version"`
	Event         string                 `json:"event"`
	ChannelTitle  string                 `json:"channel_title"`
	EpisodeTitle  string                 `json:"episode_title"`
	TranscriptKey string                 `json:"transcript_key"`
	SegmentCount  int                    `json:"segment_count"`
	Segments      []TranscriptionSegment `json:"segments"`
	Transcript    string                 `json:"transcript"`
	CompletedAt   time.Time              `json:"completed_at"`
}

type Sender interface {
	SendTranscriptionCompleted(ctx context.Context, payload TranscriptionCompletedPayload) error
}
