package domain

import (
	"errors"
	"fmt"
)

// ErrTranscriptionRejected covers silence, hallucinated captions and any
// transcription service failure alike.
var ErrTranscriptionRejected = errors.New("transcription rejected")

// ErrUnsupportedAudio is returned for recordings that are not WAV.
var ErrUnsupportedAudio = errors.New("unsupported audio format")

// ExtractionError reports a language model reply that does not match the
// shapes schema.
type ExtractionError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extracting shapes: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extracting shapes: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
