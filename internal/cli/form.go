package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/student-roster/internal/app"
	"github.com/noah-isme/student-roster/internal/viewmodel"
)

// formFlags maps command-line flags onto form fields.
var formFlags = []struct {
	name  string
	field viewmodel.Field
	usage string
}{
	{"first-name", viewmodel.FieldFirstName, "first name (required)"},
	{"last-name", viewmodel.FieldLastName, "last name (required)"},
	{"phone", viewmodel.FieldPhone, "phone number (required)"},
	{"email", viewmodel.FieldEmail, "email address"},
	{"dob", viewmodel.FieldDOB, "date of birth, free text"},
	{"class", viewmodel.FieldClass, "class"},
}

func registerFormFlags(flags *pflag.FlagSet) map[viewmodel.Field]*string {
	values := make(map[viewmodel.Field]*string, len(formFlags))
	for _, f := range formFlags {
		values[f.field] = flags.String(f.name, "", f.usage)
	}
	return values
}

// applyFormFlags copies explicitly set flags into the form.
func applyFormFlags(flags *pflag.FlagSet, values map[viewmodel.Field]*string, form *viewmodel.FormViewModel) error {
	for _, f := range formFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if err := form.Set(f.field, *values[f.field]); err != nil {
			return err
		}
	}
	return nil
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var values map[viewmodel.Field]*string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Long: `Add a student to the roster.

Blank email, dob and class fall back to the roster defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				form := viewmodel.NewAddForm(a.Students)
				return saveForm(cmd, out, form, values)
			})
		},
	}
	values = registerFormFlags(cmd.Flags())
	return cmd
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var values map[viewmodel.Field]*string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a student",
		Long: `Edit a student. The form starts from the stored record; only the flags
given on the command line change. The stored name is split on its first space
into first and last name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				form, err := viewmodel.NewEditForm(cmd.Context(), a.Students, args[0])
				if err != nil {
					return out.Fail(err)
				}
				return saveForm(cmd, out, form, values)
			})
		},
	}
	values = registerFormFlags(cmd.Flags())
	return cmd
}

func saveForm(cmd *cobra.Command, out *OutputFormatter, form *viewmodel.FormViewModel, values map[viewmodel.Field]*string) error {
	if err := applyFormFlags(cmd.Flags(), values, form); err != nil {
		return out.Fail(err)
	}
	student, nav, err := form.Save(cmd.Context())
	if err != nil {
		return out.Fail(err)
	}
	out.VerboseLog("navigate: %s", nav.Route)
	return out.Success(student, func(w io.Writer) error {
		verb := "Added"
		if form.IsEdit() {
			verb = "Updated"
		}
		_, err := fmt.Fprintf(w, "%s %s (%s)\n", verb, student.Name, student.ID)
		return err
	})
}
