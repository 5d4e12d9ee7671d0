package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/session"
	"github.com/spigell/resume-matcher/internal/store"
)

const dateLayout = "2006-01-02 15:04"

func printView(w io.Writer, v *session.View) {
	if v == nil || v.Assessment == nil {
		return
	}
	a := v.Assessment

	fmt.Fprintf(w, "\nResume: %s\n", v.Filename)
	fmt.Fprintf(w, "Target job: %s\n", report.JobTitle(v.JobTitle))
	if !v.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Analyzed: %s\n", v.CreatedAt.Local().Format(dateLayout))
	}
	fmt.Fprintf(w, "Match score: %d%% (%s)\n\n", a.MatchScore, ai.BandFor(a.MatchScore).Label())

	fmt.Fprintf(w, "Profile summary:\n%s\n\n", a.ProfileSummary)

	fmt.Fprintln(w, "Missing skills:")
	printList(w, a.MissingSkills, report.NoMissingSkills)

	fmt.Fprintln(w, "\nRecommended improvements:")
	printList(w, a.Improvements, report.NoImprovements)
	fmt.Fprintln(w)
}

func printList(w io.Writer, items []string, none string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "  - %s\n", none)
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}

func printStats(w io.Writer, stats store.Stats) {
	if stats.Count == 0 {
		fmt.Fprintln(w, "No analyses yet.")
		return
	}
	fmt.Fprintf(w, "Analyses: %d  Average: %.1f%%  Best: %d%%  Lowest: %d%%\n",
		stats.Count, stats.Average, stats.Max, stats.Min)
}

func printHistory(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "History is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tFILE\tJOB\tSCORE\tVERDICT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			r.ID, r.CreatedAt.Local().Format(dateLayout), r.Filename, report.JobTitle(r.JobTitle),
			r.MatchScore, ai.BandFor(r.MatchScore).Label())
	}
	tw.Flush()
}

func recordLabel(r store.Record) string {
	return strings.Join([]string{
		r.CreatedAt.Local().Format(dateLayout),
		r.Filename,
		report.JobTitle(r.JobTitle),
		fmt.Sprintf("%d%%", r.MatchScore),
	}, " | ")
}
