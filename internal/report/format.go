package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/ai"
)

const (
	// NotSpecified replaces an absent job title.
	NotSpecified = "Not Specified"

	NoMissingSkills  = "All key skills from job description are present"
	NoImprovements   = "Resume is well-optimized"
	timestampLayout  = "2006-01-02 15:04:05"
	fileNameLayout   = "20060102_150405"
	fileNamePrefix   = "resume_analysis_"
	fileNameSuffix   = ".txt"
	ruleWidth        = 64
	listIndent       = "  "
	reportTitle      = "AI RESUME ANALYSIS REPORT"
	reportFooterLine = "Generated by AI Resume Analyzer"
)

// Format renders an assessment as a plain text report. The output depends
// only on its arguments.
func Format(a *ai.Assessment, filename, jobTitle string, generatedAt time.Time) string {
	if a == nil {
		a = &ai.Assessment{}
	}

	jobTitle = JobTitle(jobTitle)

	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(center(reportTitle, ruleWidth) + "\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Report Generated: %s\n", generatedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "Resume File: %s\n", filename)
	fmt.Fprintf(&b, "Target Job: %s\n\n", jobTitle)

	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "MATCH SCORE: %d%%\n", a.MatchScore)
	fmt.Fprintf(&b, "VERDICT: %s\n\n", ai.BandFor(a.MatchScore).Label())

	b.WriteString(rule + "\n\n")
	b.WriteString("PROFILE SUMMARY:\n")
	b.WriteString(a.ProfileSummary + "\n\n")

	b.WriteString(rule + "\n\n")
	b.WriteString("MISSING SKILLS & KEYWORDS:\n")
	writeList(&b, a.MissingSkills, NoMissingSkills)

	b.WriteString("\n" + rule + "\n\n")
	b.WriteString("RECOMMENDED IMPROVEMENTS:\n")
	writeList(&b, a.Improvements, NoImprovements)

	b.WriteString("\n" + rule + "\n")
	b.WriteString(reportFooterLine + "\n")
	b.WriteString(rule + "\n")

	return b.String()
}

// JobTitle returns the trimmed title or the NotSpecified placeholder.
func JobTitle(title string) string {
	if title = strings.TrimSpace(title); title == "" {
		return NotSpecified
	}
	return title
}

// FileName is the export name for a report generated at t.
func FileName(t time.Time) string {
	return fileNamePrefix + t.Format(fileNameLayout) + fileNameSuffix
}

func writeList(b *strings.Builder, items []string, none string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s- %s\n", listIndent, none)
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "%s%d. %s\n", listIndent, i+1, item)
	}
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
