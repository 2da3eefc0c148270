package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/student-roster/internal/app"
	"github.com/noah-isme/student-roster/internal/viewmodel"
)

// DeleteResult is the JSON payload of a delete.
type DeleteResult struct {
	Deleted   []string `json:"deleted"`
	Remaining int      `json:"remaining"`
	Aborted   bool     `json:"aborted,omitempty"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete students",
		Long: `Select the given students and delete them after a yes/no prompt.

Every id must exist; otherwise nothing is deleted. --yes skips the prompt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				list := viewmodel.NewListViewModel(a.Students, a.Logger)
				ctx := cmd.Context()
				if err := list.Load(ctx); err != nil {
					return out.Fail(err)
				}
				if err := list.Select(args...); err != nil {
					return out.Fail(err)
				}
				ids := list.SelectedIDs()

				var confirm viewmodel.Confirmer = viewmodel.AlwaysConfirm
				if !yes {
					confirm = promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
				}
				deleted, err := list.DeleteSelected(ctx, confirm)
				if err != nil {
					return out.Fail(err)
				}
				result := DeleteResult{Deleted: ids, Remaining: list.Len(), Aborted: !deleted}
				if !deleted {
					result.Deleted = []string{}
				}
				return out.Success(result, func(w io.Writer) error {
					if !deleted {
						_, err := fmt.Fprintln(w, "Aborted, nothing deleted")
						return err
					}
					_, err := fmt.Fprintf(w, "Deleted %d student(s), %d remaining\n", len(ids), result.Remaining)
					return err
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// promptConfirmer asks on prompt and reads the answer from in. Only y and yes
// (any case) confirm; end of input declines.
func promptConfirmer(in io.Reader, prompt io.Writer) viewmodel.Confirmer {
	reader := bufio.NewReader(in)
	return viewmodel.ConfirmFunc(func(ctx context.Context, message string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(prompt, "%s [y/N]: ", message)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}
