package tts

import (
	"context"
	"errors"
)

var ErrEmptyAudio = errors.New("no audio data in response")

// Audio is an encoded speech payload as returned by the provider.
type Audio struct {
	// Base64 holds the provider's base64 audio, untouched.
	Base64     string
	Format     string
	SampleRate int
}

// Synthesizer converts text to speech in a single blocking call.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}
