package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petems/recmeet/internal/pipeline"
)

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	var ov apiOverrides

	cmd := &cobra.Command{
		Use:   "process <recording-dir | audio.wav>",
		Short: "Run post-processing on an existing recording",
		Long: "Transcribes, summarizes, and writes the meeting note for a\n" +
			"recording that already exists on disk, for example after a\n" +
			"transcription server outage.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(deps, args[0], ov)
		},
	}

	cmd.Flags().StringVar(&ov.apiKey, "api-key", "", "Summary API key (overrides config and environment)")
	cmd.Flags().StringVar(&ov.apiURL, "api-url", "", "Summary API endpoint")
	cmd.Flags().StringVar(&ov.apiModel, "api-model", "", "Summary model name")
	cmd.Flags().BoolVar(&ov.noSummary, "no-summary", false, "Skip the AI summary")
	cmd.Flags().StringVar(&ov.language, "language", "", "Transcription language hint")
	cmd.Flags().StringVar(&ov.contextFile, "context-file", "", "Markdown file with pre-meeting context")
	cmd.Flags().BoolVar(&ov.noDiarize, "no-diarize", false, "Skip speaker labeling")
	cmd.Flags().IntVar(&ov.numSpeakers, "num-speakers", 0, "Expected speaker count (0 = auto)")

	return cmd
}

func runProcess(deps *Dependencies, target string, ov apiOverrides) error {
	fi, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("recording %s: %w", target, err)
	}

	var outputDir, audioPath string
	if fi.IsDir() {
		outputDir = target
		audioPath = filepath.Join(target, "audio.wav")
		if _, err := os.Stat(audioPath); err != nil {
			return fmt.Errorf("no audio.wav in %s", target)
		}
	} else {
		audioPath = target
		outputDir = filepath.Dir(target)
	}

	stages, opts := buildStages(deps, ov)
	res, err := stages.Run(context.Background(), pipeline.Input{
		OutputDir: outputDir,
		AudioPath: audioPath,
	}, opts)
	if err != nil {
		return err
	}

	deps.Log.Info().Str("transcript", res.TranscriptPath).Str("note", res.NotePath).
		Msg("Processing complete")
	return nil
}
