// Package cli wires the recmeet commands.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/recmeet/internal/config"
	"github.com/petems/recmeet/internal/version"
)

type Dependencies struct {
	Config *config.Config
	Log    zerolog.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recmeet",
		Short: "Record meetings, transcribe, and summarize",
		Long: "Records microphone and system audio, transcribes the mix with a\n" +
			"whisper server, optionally labels speakers and generates an AI\n" +
			"summary, and writes a Markdown meeting note.",
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewSourcesCmd(deps))

	return rootCmd
}
