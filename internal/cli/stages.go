package cli

import (
	"github.com/petems/recmeet/internal/config"
	"github.com/petems/recmeet/internal/diarize"
	"github.com/petems/recmeet/internal/note"
	"github.com/petems/recmeet/internal/notify"
	"github.com/petems/recmeet/internal/pipeline"
	"github.com/petems/recmeet/internal/summarize"
	"github.com/petems/recmeet/internal/transcribe"
)

// apiOverrides are the per-invocation flag values layered over the
// config file.
type apiOverrides struct {
	apiKey      string
	apiURL      string
	apiModel    string
	language    string
	contextFile string
	noSummary   bool
	noDiarize   bool
	numSpeakers int
}

func buildStages(deps *Dependencies, ov apiOverrides) (*pipeline.Stages, pipeline.Options) {
	cfg := deps.Config

	summaryURL := cfg.SummaryURL()
	if ov.apiURL != "" {
		summaryURL = ov.apiURL
	}
	summaryModel := cfg.SummaryModel()
	if ov.apiModel != "" {
		summaryModel = ov.apiModel
	}
	summaryKey := cfg.SummaryAPIKey()
	if ov.apiKey != "" {
		summaryKey = ov.apiKey
	}

	stages := &pipeline.Stages{
		Transcriber: &transcribe.Client{
			URL:    cfg.Transcription.URL,
			Model:  cfg.Transcription.Model,
			APIKey: cfg.Transcription.APIKey,
			Log:    deps.Log,
		},
		Log: deps.Log,
		Note: note.Config{
			Domain: cfg.Notes.Domain,
			Tags:   cfg.Notes.Tags,
		},
		Notify: notify.New(cfg.General.Notifications, deps.Log).Send,
	}

	if summaryKey != "" {
		stages.Summarizer = &summarize.Client{
			URL:    summaryURL,
			Model:  summaryModel,
			APIKey: summaryKey,
			Log:    deps.Log,
		}
	} else {
		deps.Log.Info().Msg("No summary API key, skipping summaries")
	}

	if cfg.Diarization.Enabled && cfg.Diarization.URL != "" {
		stages.Diarizer = &diarize.Client{
			URL: cfg.Diarization.URL,
			Log: deps.Log,
		}
	}

	language := cfg.Transcription.Language
	if ov.language != "" {
		language = ov.language
	}
	numSpeakers := cfg.Diarization.NumSpeakers
	if ov.numSpeakers > 0 {
		numSpeakers = ov.numSpeakers
	}

	opts := pipeline.Options{
		Language:         language,
		ContextFile:      ov.contextFile,
		NoSummary:        ov.noSummary,
		Diarize:          cfg.Diarization.Enabled && !ov.noDiarize,
		NumSpeakers:      numSpeakers,
		ClusterThreshold: cfg.Diarization.ClusterThreshold,
		Model:            cfg.Transcription.Model,
	}
	return stages, opts
}
