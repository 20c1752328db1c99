package notification

const (
	webhookEventTranscriptionCompleted = "transcription.completed"

	messageCompletedTitle       = ":page_facing_up:  **文字起こしが完了しました。**"
	messageCompletedEpisodeLine = "番組：%s\nエピソード：%s"
	messageCompletedEmptyHint   = "-# 発話区間が検出されなかったため、全文のみを添付しています。"
	messageCompletedNoSpeech    = "-# 音声が検出されなかったため、ファイルは添付していません。"
	messagePoweredByLine        = "-# *Powered by [Kikitori](https://github.com/foxseedlab/kikitori)*"

	transcriptHeaderChannel  = "番組名：%s"
	transcriptHeaderEpisode  = "エピソード名：%s"
	transcriptHeaderSegments = "発話区間数：%d"
)
