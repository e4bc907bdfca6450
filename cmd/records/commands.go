package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/app"
	"github.com/noah-isme/academic-records/internal/dto"
	"github.com/noah-isme/academic-records/internal/grading"
	"github.com/noah-isme/academic-records/internal/models"
	"github.com/noah-isme/academic-records/internal/service"
	"github.com/noah-isme/academic-records/pkg/config"
	"github.com/noah-isme/academic-records/pkg/logger"
)

type appFactory func(ctx context.Context) (*app.App, error)

func defaultFactory(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, logr.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(defaultFactory)
}

func buildRootCmd(open appFactory) *cobra.Command {
	root := &cobra.Command{
		Use:          "records",
		Short:        "Inspect and maintain the academic records store",
		SilenceUsage: true,
	}
	root.AddCommand(
		statsCmd(open),
		listCmd(open),
		exportCmd(open),
		transcriptCmd(open),
		clearCmd(open),
	)
	return root
}

func withApp(cmd *cobra.Command, open appFactory, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	return fn(ctx, a)
}

func statsCmd(open appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				return writeStats(cmd.OutOrStdout(), a.Dashboard.Stats(ctx))
			})
		},
	}
}

type listOptions struct {
	query      string
	department string
	year       string
	sortBy     string
	order      string
	page       int
	pageSize   int
}

func listCmd(open appFactory) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students with the same filters as the web view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				students, pagination, err := a.Students.List(ctx, opts.view())
				if err != nil {
					return err
				}
				return writeStudents(cmd.OutOrStdout(), students, pagination)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.query, "query", "q", "", "search name, roll number or email")
	flags.StringVar(&opts.department, "department", "", "filter by department")
	flags.StringVar(&opts.year, "year", "", "filter by academic year")
	flags.StringVar(&opts.sortBy, "sort", "", "name, rollNumber, department or createdAt")
	flags.StringVar(&opts.order, "order", "", "asc or desc")
	flags.IntVar(&opts.page, "page", 1, "page number")
	flags.IntVar(&opts.pageSize, "page-size", 0, "students per page")
	return cmd
}

func (o listOptions) view() models.StudentView {
	return models.StudentView{
		Filter: models.StudentFilter{
			Query:        o.query,
			Department:   models.Department(o.department),
			AcademicYear: models.AcademicYear(o.year),
		},
		SortBy:   models.StudentSortKey(o.sortBy),
		Order:    models.SortOrder(strings.ToLower(o.order)),
		Page:     o.page,
		PageSize: o.pageSize,
	}
}

func exportCmd(open appFactory) *cobra.Command {
	var (
		opts   listOptions
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered student list as CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exportFormat := dto.ExportFormat(strings.ToLower(format))
			if exportFormat != dto.ExportFormatCSV && exportFormat != dto.ExportFormatPDF {
				return fmt.Errorf("unsupported format %q", format)
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				students, err := a.Students.Matching(ctx, opts.view())
				if err != nil {
					return err
				}
				payload, err := a.Exports.Render(exportFormat, students)
				if err != nil {
					return err
				}
				target := out
				if target == "" {
					target = service.ExportFilename(exportFormat, a.Store.Now())
				}
				if err := writeFile(target, payload); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d students to %s\n", len(students), target)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&format, "format", "csv", "csv or pdf")
	flags.StringVarP(&out, "out", "o", "", "output file (defaults to students-YYYY-MM-DD.<format>)")
	flags.StringVarP(&opts.query, "query", "q", "", "search name, roll number or email")
	flags.StringVar(&opts.department, "department", "", "filter by department")
	flags.StringVar(&opts.year, "year", "", "filter by academic year")
	flags.StringVar(&opts.sortBy, "sort", "", "name, rollNumber, department or createdAt")
	flags.StringVar(&opts.order, "order", "", "asc or desc")
	return cmd
}

func transcriptCmd(open appFactory) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "transcript <student-id>",
		Short: "Print a transcript, or write it as PDF with --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if out != "" {
					payload, _, err := a.Exports.TranscriptPDF(ctx, args[0])
					if err != nil {
						return err
					}
					if err := writeFile(out, payload); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "wrote transcript to %s\n", out)
					return nil
				}
				transcript, err := a.Enrollments.Transcript(ctx, args[0])
				if err != nil {
					return err
				}
				return writeTranscript(cmd.OutOrStdout(), transcript)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write a PDF transcript to this file")
	return cmd
}

func clearCmd(open appFactory) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every student record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete all students without --yes")
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				count := len(a.Students.All(ctx))
				if err := a.Students.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d students\n", count)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func writeFile(target string, payload []byte) error {
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func writeStats(w io.Writer, stats dto.DashboardStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total students\t%d\n", stats.TotalStudents)
	fmt.Fprintf(tw, "Departments\t%d\n", stats.Departments)
	fmt.Fprintf(tw, "Top department\t%s\n", stats.TopDepartment)
	fmt.Fprintf(tw, "Registered this week\t%d\n", stats.RecentRegistrations)
	fmt.Fprintf(tw, "Enrollments\t%d\n", stats.TotalEnrollments)
	fmt.Fprintf(tw, "Average CGPA\t%s\n", stats.AverageCGPA)
	for _, entry := range stats.ByDepartment {
		fmt.Fprintf(tw, "  %s\t%d\n", entry.Label, entry.Count)
	}
	return tw.Flush()
}

func writeStudents(w io.Writer, students []models.Student, pagination *models.Pagination) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLL NUMBER\tNAME\tDEPARTMENT\tYEAR\tSUBJECTS")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.RollNumber, s.Name, s.Department, s.AcademicYear, len(s.Enrollments))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if pagination != nil {
		fmt.Fprintf(w, "page %d of %d, %d students\n", pagination.Page, max(pagination.TotalPages, 1), pagination.TotalCount)
	}
	return nil
}

func writeTranscript(w io.Writer, transcript *models.Transcript) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, semester := range transcript.Semesters {
		fmt.Fprintf(tw, "%s\t\t\t\n", semester.Semester)
		for _, e := range semester.Enrollments {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", e.SubjectCode, e.SubjectName, e.CreditHours, e.Grade)
		}
	}
	fmt.Fprintf(tw, "Credits\t%d\t\t\n", transcript.CreditHours)
	fmt.Fprintf(tw, "CGPA\t%s\t\t\n", grading.Format(transcript.CGPA))
	return tw.Flush()
}
