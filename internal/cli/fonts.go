package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/textoverlay/fonts"
)

func newFontsCmd() *cobra.Command {
	var dir string
	var system bool
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List registered font families and the resolved stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg := loadRegistry(ctx, dir, system, loggerFromContext(ctx))
			out := cmd.OutOrStdout()
			for _, name := range reg.Names() {
				fmt.Fprintln(out, name)
			}
			stack := fonts.Resolve(reg.Families())
			fmt.Fprintf(out, "stack: %s\n", stack)
			if fonts.Degraded(stack) {
				fmt.Fprintln(out, "warning: Roboto / DejaVu Sans 均未注册，将使用内置字体")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "fonts", "fonts", "font directory")
	cmd.Flags().BoolVar(&system, "system-fonts", true, "also search system font directories")
	return cmd
}
