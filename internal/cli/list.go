package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/student-roster/internal/app"
	"github.com/noah-isme/student-roster/internal/models"
	"github.com/noah-isme/student-roster/internal/viewmodel"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List students",
		Long:  "Show the roster. The starter roster is written on first use of an empty store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				list := viewmodel.NewListViewModel(a.Students, a.Logger)
				if err := list.Load(cmd.Context()); err != nil {
					return out.Fail(err)
				}
				students := list.Students()
				return out.Success(students, func(w io.Writer) error {
					return writeStudentTable(w, students)
				})
			})
		},
	}
}

func writeStudentTable(w io.Writer, students []models.Student) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tCLASS")
	for _, st := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.ID, st.Name, st.Phone, st.Email, st.Class)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d student(s)\n", len(students))
	return err
}

func writeStudent(w io.Writer, st *models.Student) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", st.ID},
		{"Name", st.Name},
		{"Phone", st.Phone},
		{"Email", st.Email},
		{"DOB", st.DOB},
		{"Class", st.Class},
		{"Age", st.Age.String()},
		{"Years in school", st.YearsInSchool.String()},
		{"Profile image", st.ProfileImage.String()},
	}
	if st.RegistrationNo != "" {
		rows = append(rows, [2]string{"Registration no", st.RegistrationNo})
	}
	if st.Guardian != nil {
		rows = append(rows, [2]string{"Guardian", fmt.Sprintf("%s (%s, %s)", st.Guardian.Name, st.Guardian.Phone, st.Guardian.Email)})
	}
	for _, fm := range st.FamilyMembers {
		rows = append(rows, [2]string{"Family", fmt.Sprintf("%s (%s, %s)", models.JoinName(fm.FirstName, fm.LastName), fm.Phone, fm.Email)})
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}
