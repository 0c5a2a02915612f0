package sobind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/refaktor/sobind/config"
	"github.com/refaktor/sobind/logger"
	"github.com/refaktor/sobind/pipeline"
	"github.com/refaktor/sobind/report"
)

const name = "sobind"

// Main runs the command line tool and returns its exit code. Usage and
// argument errors go to stdout, logs to stderr. environ holds the
// environment variables; nil means the process environment.
func Main(ctx context.Context, args []string, environ map[string]string, stdout, stderr io.Writer) int {
	opts, err := config.Parse(args, environ)
	if err == nil && !opts.Help {
		err = opts.Validate()
	}
	if err != nil {
		if cErr := (&config.Error{}); errors.As(err, &cErr) {
			fmt.Fprintln(stdout, cErr.String())
		} else {
			fmt.Fprintln(stdout, err)
		}
		fmt.Fprintf(stdout, "Run '%v --help' for usage.\n", name)
		return 1
	}
	if opts.Help {
		config.Usage(stdout, name)
		return 0
	}

	level, _ := logger.ParseLevel(opts.LogLevel)
	log := logger.New(stderr, level)
	st, err := pipeline.Run(ctx, opts, log)
	if err != nil {
		log.Log(logger.ERROR, "%v", err)
		return 1
	}
	if level <= logger.INFO {
		PrintStats(stdout, st)
	}
	return 0
}

// PrintStats writes binding, diagnostic and timing tables of a run to w.
func PrintStats(w io.Writer, st *pipeline.Stats) {
	b := st.Binding
	enumValues := 0
	for _, e := range st.Decls.Enums {
		enumValues += len(e.Values)
	}

	fmt.Fprintf(w, "==Binding stats==\n")
	{
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Category", "Bound/Total"})
		tbl.AppendBulk([][]string{
			{"Constants", fmt.Sprintf("%v/%v", len(b.Constants), st.Defines)},
			{"Enum values", fmt.Sprintf("%v/%v", len(b.Enums), enumValues)},
			{"Functions", fmt.Sprintf("%v/%v", len(b.Functions), st.Decls.Functions.Len())},
			{"Structs", fmt.Sprintf("%v/%v", len(b.Structs), st.Decls.Structs.Len())},
		})
		tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})
		tbl.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		tbl.SetCenterSeparator("|")
		tbl.Render()
	}

	if st.Report.Len() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "==Diagnostics==\n")
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Category", "Count"})
		for _, c := range report.Categories() {
			if n := len(st.Report.Get(c)); n > 0 {
				tbl.Append([]string{c.String(), strconv.Itoa(n)})
			}
		}
		tbl.Append([]string{"==TOTAL==", strconv.Itoa(st.Report.Len())})
		tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
		tbl.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		tbl.SetCenterSeparator("|")
		tbl.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "==Timing stats==\n")
	{
		var timeTotal time.Duration
		for _, t := range st.Timings {
			timeTotal += t.Duration
		}
		timePercent := func(t time.Duration) string {
			if timeTotal == 0 {
				return "0.00"
			}
			return strconv.FormatFloat(
				float64(t)/float64(timeTotal)*100,
				'f', 2, 64,
			)
		}

		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Task", "Time", "Time %"})
		for _, t := range st.Timings {
			tbl.Append([]string{t.Task, t.Duration.String(), timePercent(t.Duration)})
		}
		tbl.Append([]string{"==TOTAL==", timeTotal.String(), "100"})
		tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT})
		tbl.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		tbl.SetCenterSeparator("|")
		tbl.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Wrote bindings to %v\n", st.Path)
}
