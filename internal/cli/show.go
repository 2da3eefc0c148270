package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/student-roster/internal/app"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				student, err := a.Students.Get(cmd.Context(), args[0])
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(student, func(w io.Writer) error {
					return writeStudent(w, student)
				})
			})
		},
	}
}
