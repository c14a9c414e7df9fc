package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/recmeet/internal/audiofile"
)

// Client talks to an HTTP speaker-diarization endpoint.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
	Log    zerolog.Logger
}

type diarizeResponse struct {
	Segments []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker int     `json:"speaker"`
	} `json:"segments"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 30 * time.Minute}
}

// Diarize uploads the buffer as a WAV file and parses the returned
// speaker segments.
func (c *Client) Diarize(ctx context.Context, samples []float32, numSpeakers int, threshold float64) ([]Segment, error) {
	tmp, err := os.CreateTemp("", "recmeet-diar-*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := audiofile.WriteWAV(tmpPath, audiofile.FromFloat32(samples)); err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if numSpeakers > 0 {
		if err := writer.WriteField("num_speakers", strconv.Itoa(numSpeakers)); err != nil {
			return nil, err
		}
	}
	if threshold > 0 {
		if err := writer.WriteField("threshold", strconv.FormatFloat(threshold, 'f', -1, 64)); err != nil {
			return nil, err
		}
	}
	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		f.Close()
		return nil, err
	}
	f.Close()
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	c.Log.Info().Str("url", c.URL).Int("num_speakers", numSpeakers).Msg("Diarizing")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling diarization API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading diarization response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed diarizeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing diarization response: %w", err)
	}

	segments := make([]Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segments = append(segments, Segment{Start: s.Start, End: s.End, Speaker: s.Speaker})
	}

	c.Log.Info().Int("segments", len(segments)).Int("speakers", CountSpeakers(segments)).
		Msg("Diarization complete")
	return segments, nil
}
