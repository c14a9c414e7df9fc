package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petems/recmeet/internal/capture"
	"github.com/petems/recmeet/internal/source"
)

func NewSourcesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List available audio sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := capture.Initialize(); err != nil {
				return err
			}
			defer capture.Terminate()

			enum := &source.PortAudio{}
			sources, err := enum.Sources()
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audio sources found.")
				return nil
			}

			for _, s := range sources {
				marker := ""
				if s.IsMonitor || capture.IsMonitorName(s.Name) {
					marker = "  [monitor]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)%s\n", s.Name, s.Description, marker)
			}
			return nil
		},
	}
}
