package application

import "context"

// SpeechToText returns the transcript of a recording, or an error wrapping
// domain.ErrTranscriptionRejected when the recording should be made again.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
