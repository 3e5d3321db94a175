package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jobdeck/jobdeck/internal/jobboard"
)

const maxCellWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printTable writes rows as a bordered table, or a short notice when there
// are none.
func printTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "nothing to show")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func jobRows(jobs []jobboard.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID,
			clip(j.Title),
			clip(j.CompanyName),
			clip(j.Location),
			string(j.JobType),
			string(j.Status),
		})
	}
	return rows
}

var jobHeaders = []string{"ID", "TITLE", "COMPANY", "LOCATION", "TYPE", "STATUS"}

func userRows(users []jobboard.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, clip(u.Name), clip(u.Email), string(u.Role), u.AccountStatus()})
	}
	return rows
}

var userHeaders = []string{"ID", "NAME", "EMAIL", "ROLE", "STATUS"}

func applicationRows(apps []jobboard.Application) [][]string {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			a.ID,
			a.JobID(),
			clip(a.FilterValue("title")),
			clip(a.FilterValue("company")),
			string(a.Status),
		})
	}
	return rows
}

var applicationHeaders = []string{"ID", "JOB", "TITLE", "COMPANY", "STATUS"}

func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-3]) + "..."
}
