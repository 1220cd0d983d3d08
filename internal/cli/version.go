package cli

import (
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"printkit/internal/services/printify"
)

func (a *app) versionCommand() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the printkit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if !plain {
				a.printf("%s\n", figure.NewFigure("printkit", "small", true).String())
			}
			a.printf("printkit %s (%s %s/%s)\n", printify.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Skip the banner")
	return cmd
}
