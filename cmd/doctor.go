package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nibzard/duke-go/internal/config"
	"github.com/nibzard/duke-go/internal/storage"
)

// doctorCommand checks the config and the data file.
func doctorCommand(e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	w := e.out

	fmt.Fprintln(w, "Duke Doctor")
	fmt.Fprintln(w, "===========")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintf(w, "Project root: %s\n", e.cfg.ProjectRoot)
	if _, err := os.Stat(e.cfg.ProjectRoot); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	writeSources(w, e.sources)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Data file: %s\n", e.cfg.DataFile)
	tasks, err := storage.NewStore(e.cfg.DataFile).Load()
	var pe *storage.ParseError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintln(w, "  ⚠️  Missing (created on the first interactive run)")
	case errors.As(err, &pe):
		fmt.Fprintf(w, "  ❌ Line %d: %v\n", pe.Line, pe.Err)
		fmt.Fprintf(w, "     %q\n", pe.Text)
		allOK = false
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	default:
		done := 0
		for _, t := range tasks {
			if t.Done {
				done++
			}
		}
		fmt.Fprintf(w, "  ✅ OK: %d task(s), %d done\n", len(tasks), done)
	}
	fmt.Fprintln(w)

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}

// writeSources prints every config value and where it came from.
func writeSources(w io.Writer, cws *config.ConfigWithSources) {
	fmt.Fprintln(w, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(w, "  files: (none)")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(w, "  file: %s\n", f)
	}
	for _, field := range cws.SortedFields() {
		fmt.Fprintf(w, "  %-15s %-30s (%s)\n", field, cws.Value(field), cws.Sources[field])
	}
}
