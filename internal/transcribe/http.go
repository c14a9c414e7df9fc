package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/recmeet/internal/audiofile"
)

// Client talks to an OpenAI-compatible transcription endpoint, such
// as a local whisper-server or a hosted API.
type Client struct {
	URL    string
	Model  string
	APIKey string
	HTTP   *http.Client
	Log    zerolog.Logger
}

type verboseJSONResponse struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 30 * time.Minute}
}

// Transcribe uploads the buffer as a WAV file and parses the
// verbose_json response.
func (c *Client) Transcribe(ctx context.Context, samples []float32, language string) (Result, error) {
	tmp, err := os.CreateTemp("", "recmeet-asr-*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := audiofile.WriteWAV(tmpPath, audiofile.FromFloat32(samples)); err != nil {
		return Result{}, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if c.Model != "" {
		if err := writer.WriteField("model", c.Model); err != nil {
			return Result{}, err
		}
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return Result{}, err
		}
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return Result{}, err
	}

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return Result{}, err
	}
	f, err := os.Open(tmpPath)
	if err != nil {
		return Result{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		f.Close()
		return Result{}, err
	}
	f.Close()
	if err := writer.Close(); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	c.Log.Info().Str("url", c.URL).Str("model", c.Model).Msg("Transcribing")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("calling transcription API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("transcription API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed verboseJSONResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("parsing transcription response: %w", err)
	}

	result := Result{Language: parsed.Language}
	for _, s := range parsed.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, Segment{Start: s.Start, End: s.End, Text: text})
	}

	c.Log.Info().Int("segments", len(result.Segments)).Str("language", result.Language).
		Msg("Transcription complete")
	return result, nil
}
