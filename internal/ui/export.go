package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/ics"
	"github.com/javiermolinar/coursetable/internal/importer"
)

// exportFormat is inferred from the target's extension.
type exportFormat int

const (
	formatICS exportFormat = iota
	formatYAML
	formatXLSX
)

func formatOf(path string) (exportFormat, error) {
	if path == "-" {
		return formatICS, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ics":
		return formatICS, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".xlsx":
		return formatXLSX, nil
	}
	return 0, fmt.Errorf("%w: %q (use .ics, .yaml, .yml or .xlsx)", importer.ErrUnsupportedFormat, filepath.Ext(path))
}

func (a *App) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file|-]",
		Short: "Export the timetable as iCalendar, YAML or Excel",
		Long: `Export every stored course.

The format follows the file extension: .ics writes one weekly recurring
event per course for calendar apps, with an alarm on courses that have
reminders; .yaml/.yml and .xlsx write files that import reads back.
"-" writes iCalendar to standard output.`,
		Example: `  coursetable export term.ics
  coursetable export backup.yaml
  coursetable export - > term.ics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatOf(args[0])
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			entries, err := a.repo.ListCourses(context.Background(), course.Filter{})
			if err != nil {
				return fmt.Errorf("listing courses: %w", err)
			}

			var buf bytes.Buffer
			if err := a.writeExport(&buf, cmd.ErrOrStderr(), format, entries); err != nil {
				return err
			}

			if args[0] == "-" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d courses to %s\n", len(entries), path)
			return nil
		},
	}

	return cmd
}

// writeExport encodes entries to w; warnings about left-out entries go to
// errw.
func (a *App) writeExport(w, errw io.Writer, format exportFormat, entries []*course.Entry) error {
	switch format {
	case formatICS:
		r, err := a.resolver()
		if err != nil {
			return err
		}
		x := ics.NewExporter(r, a.config.Reminder.Advance(), a.log)
		x.Now = a.now
		skipped, err := x.Write(w, entries)
		for _, sk := range skipped {
			fmt.Fprintf(errw, "%s %s (%s): %v\n", formatMuted("not exported:"), sk.Entry.Title, shortID(sk.Entry.ID), sk.Err)
		}
		return err
	case formatYAML, formatXLSX:
		records := make([]importer.Record, 0, len(entries))
		for _, e := range entries {
			records = append(records, importer.FromEntry(e))
		}
		if format == formatYAML {
			return importer.WriteYAML(w, records)
		}
		return importer.WriteXLSX(w, records)
	}
	return fmt.Errorf("unknown export format %d", format)
}
