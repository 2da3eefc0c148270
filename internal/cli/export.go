package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/student-roster/internal/app"
)

// ExportOutput is the JSON payload of an export.
type ExportOutput struct {
	File     string `json:"file"`
	Format   string `json:"format"`
	Rows     int    `json:"rows"`
	Bytes    int    `json:"bytes"`
	Archived string `json:"archived,omitempty"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		kind    string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the roster as CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				result, err := a.Exports.Generate(cmd.Context(), kind)
				if err != nil {
					return out.Fail(err)
				}
				target := outPath
				if target == "" {
					target = result.Filename
				}
				if err := os.WriteFile(target, result.Data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "write export", err)
				}
				payload := ExportOutput{
					File:     target,
					Format:   string(result.Format),
					Rows:     result.Rows,
					Bytes:    len(result.Data),
					Archived: result.RelativePath,
				}
				return out.Success(payload, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Wrote %d student(s) to %s\n", payload.Rows, payload.File)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "csv", "export type (csv|pdf)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: generated name in the current directory)")
	return cmd
}
