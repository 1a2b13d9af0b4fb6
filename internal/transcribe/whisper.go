package transcribe

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber converts spoken audio to text. Implementations are fallible
// and may be slow; callers must pass a cancellable context.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Whisper transcribes audio through the OpenAI Whisper API.
type Whisper struct {
	client *openai.Client
}

func NewWhisper(apiKey string) *Whisper {
	return &Whisper{client: openai.NewClient(apiKey)}
}

// Transcribe sends the audio stream to Whisper. The filename is only used
// to hint the audio container format.
func (w *Whisper) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}
