package artifact

import "fmt"

// EpisodeRef names an episode the way stored artifacts are keyed: by display
// titles, verbatim. Two episodes sharing both titles share artifacts.
type EpisodeRef struct {
	ChannelTitle string
	EpisodeTitle string
}

func (r EpisodeRef) Key(kind Kind) string {
	switch kind {
	case KindTranscript:
		return fmt.Sprintf("transcriptions/%s_%s.txt", r.ChannelTitle, r.EpisodeTitle)
	case KindSegments:
		return fmt.Sprintf("transcriptions_segments/%s_%s_segments.json", r.ChannelTitle, r.EpisodeTitle)
	case KindTranslatedSegments:
		return fmt.Sprintf("translations_segments/%s_%s_segments.json", r.ChannelTitle, r.EpisodeTitle)
	default:
		panic(fmt.Sprintf("artifact: unknown kind %d", kind))
	}
}
