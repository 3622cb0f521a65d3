package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/importer"
)

func (a *App) importCmd() *cobra.Command {
	var (
		replace bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import courses from a YAML or Excel file",
		Long: `Import courses from a .yaml, .yml or .xlsx file.

Rows that cannot be read are reported and left out. By default courses are
added one by one and any that overlap a stored course are skipped. With
--replace the whole timetable is swapped for the file's courses, which must
not overlap each other.`,
		Example: `  coursetable import courses.yaml
  coursetable import 课表.xlsx --replace
  coursetable import courses.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("file does not exist: %s", path)
				}
				return fmt.Errorf("checking file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("path is a directory: %s", path)
			}

			records, err := importer.LoadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries, rowErr := importer.Entries(records, a.config.Term.TotalWeeks)
			printRowErrors(cmd.ErrOrStderr(), rowErr)

			if dryRun {
				fmt.Fprintf(out, "Read %d of %d courses from %s\n", len(entries), len(records), path)
				for _, p := range findConflictPairs(entries, 0, a.config.Term.TotalWeeks) {
					fmt.Fprintf(out, "%s %s %s overlaps %s %s\n",
						formatWarn("!"), p.A.Title, slotText(p.A), p.B.Title, slotText(p.B))
				}
				return nil
			}

			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			if replace {
				if err := a.repo.ReplaceAll(ctx, entries); err != nil {
					return fmt.Errorf("replacing timetable: %w", err)
				}
				fmt.Fprintf(out, "Replaced timetable with %d courses from %s\n", len(entries), path)
				return nil
			}

			count, skipped, err := importCourses(ctx, a.repo, entries)
			if err != nil {
				return err
			}
			for _, e := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s: overlaps a stored course\n",
					formatWarn("skipped"), e.Title, slotText(e))
			}
			fmt.Fprintf(out, "Imported %d courses from %s\n", count, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace every stored course")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only read and check the file")

	return cmd
}

// importCourses adds entries one at a time. Entries that overlap a stored
// course are returned as skipped; any other failure stops the import.
func importCourses(ctx context.Context, dest course.Repository, entries []*course.Entry) (int, []*course.Entry, error) {
	var (
		imported int
		skipped  []*course.Entry
	)
	for _, e := range entries {
		if err := dest.CreateCourse(ctx, e); err != nil {
			if errors.Is(err, course.ErrSlotConflict) {
				skipped = append(skipped, e)
				continue
			}
			return imported, skipped, fmt.Errorf("importing course %q: %w", e.Title, err)
		}
		imported++
	}
	return imported, skipped, nil
}

// printRowErrors prints each *importer.RowError joined into err.
func printRowErrors(w io.Writer, err error) {
	if err == nil {
		return
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		fmt.Fprintf(w, "%s %v\n", formatWarn("skipped"), err)
		return
	}
	for _, e := range joined.Unwrap() {
		fmt.Fprintf(w, "%s %v\n", formatWarn("skipped"), e)
	}
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
