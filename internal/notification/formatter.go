package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/webhook"
)

func buildTranscriptText(ref artifact.EpisodeRef, result *transcriber.Result) []byte {
	lines := []string{
		fmt.Sprintf(transcriptHeaderChannel, ref.ChannelTitle),
		fmt.Sprintf(transcriptHeaderEpisode, ref.EpisodeTitle),
		fmt.Sprintf(transcriptHeaderSegments, len(result.Segments)),
		"",
	}
	if len(result.Segments) == 0 {
		lines = append(lines, result.Transcript)
		return []byte(strings.Join(lines, "\n"))
	}
	for _, seg := range result.Segments {
		lines = append(lines, fmt.Sprintf("%s %s", formatElapsedHMS(secondsToDuration(seg.Start)), seg.Text))
	}
	return []byte(strings.Join(lines, "\n"))
}

func buildCompletedMessage(ref artifact.EpisodeRef, result *transcriber.Result, showPoweredBy bool) string {
	lines := []string{
		messageCompletedTitle,
		fmt.Sprintf(messageCompletedEpisodeLine, ref.ChannelTitle, ref.EpisodeTitle),
	}
	switch {
	case isEmptyTranscript(result):
		lines = append(lines, messageCompletedNoSpeech)
	case len(result.Segments) == 0:
		lines = append(lines, messageCompletedEmptyHint)
	}
	if showPoweredBy {
		lines = append(lines, messagePoweredByLine)
	}
	return strings.Join(lines, "\n")
}

func buildWebhookPayload(ref artifact.EpisodeRef, result *transcriber.Result, completedAt time.Time) webhook.TranscriptionCompletedPayload {
	segments := make([]webhook.TranscriptionSegment, 0, len(result.Segments))
	for i, seg := range result.Segments {
		segments = append(segments, webhook.TranscriptionSegment{
			Index:        i,
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Text:         seg.Text,
		})
	}
	return webhook.TranscriptionCompletedPayload{
		SchemaVersion: webhook.TranscriptionCompletedSchemaVersion,
		Event:         webhookEventTranscriptionCompleted,
		ChannelTitle:  ref.ChannelTitle,
		EpisodeTitle:  ref.EpisodeTitle,
		TranscriptKey: ref.Key(artifact.KindTranscript),
		SegmentCount:  len(segments),
		Segments:      segments,
		Transcript:    result.Transcript,
		CompletedAt:   completedAt.UTC(),
	}
}

// transcriptFilename keeps the name readable while dropping path separators.
func isEmptyTranscript(result *transcriber.Result) bool {
	return len(result.Segments) == 0 && strings.TrimSpace(result.Transcript) == ""
}

func transcriptFilename(ref artifact.EpisodeRef) string {
	name := fmt.Sprintf("%s_%s.txt", ref.ChannelTitle, ref.EpisodeTitle)
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}

func secondsToDuration(s float64) time.Duration {
	if s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
