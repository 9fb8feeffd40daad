package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yourname/sleepreport/internal/service"
	"github.com/yourname/sleepreport/internal/stats"
)

// App holds what the report commands need.
type App struct {
	Reports *service.ReportService
	// IsTerminal reports whether stdout is a terminal. Decorated headers are
	// only printed when it returns true.
	IsTerminal func() bool
}

// NewRootCmd creates the top-level "sleepreport" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sleepreport",
		Short:         "Sleep statistics from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "print the report as JSON")

	root.AddCommand(
		newUserReportCmd(app, "weekly", "Averages over the last 7 days", (*service.ReportService).Weekly),
		newUserReportCmd(app, "history", "Averages over the last 10 days", (*service.ReportService).History),
		newUserReportCmd(app, "today", "Today's entry", (*service.ReportService).Today),
		newUserReportCmd(app, "advice", "Advice from the last full week", (*service.ReportService).Advice),
		newAllCmd(app),
	)
	return root
}

type userReportFunc func(s *service.ReportService, ctx context.Context, user string) (stats.Report, error)

func newUserReportCmd(app *App, name, short string, build userReportFunc) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := build(app.Reports, cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("building %s report: %w", name, err)
			}
			return printReport(cmd, app, name+" report for "+user, rep)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "login of the user")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newAllCmd(app *App) *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Per-user averages for every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := stats.ParseWindow(window)
			if err != nil {
				return err
			}
			rep, err := app.Reports.AllUsers(cmd.Context(), w)
			if err != nil {
				return fmt.Errorf("building all-users report: %w", err)
			}
			return printReport(cmd, app, "All users, "+w.Label(), rep)
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "7d", "all, today or a day count such as 7d")
	return cmd
}

func printReport(cmd *cobra.Command, app *App, title string, rep stats.Report) error {
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	if app.IsTerminal != nil && app.IsTerminal() {
		writeHeader(out, title)
	}
	_, err := fmt.Fprintln(out, rep.Text)
	return err
}

func writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "\033[1m%s\033[0m\n%s\n", title, strings.Repeat("─", len([]rune(title))))
}
