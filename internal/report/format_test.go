package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/resume-matcher/internal/ai"
)

var generatedAt = time.Date(2026, 10, 16, 15, 4, 5, 0, time.UTC)

func sampleAssessment() *ai.Assessment {
	return &ai.Assessment{
		MatchScore:     73,
		MissingSkills:  []string{"Kubernetes", "Terraform"},
		ProfileSummary: "Experienced Go developer.\nStrong on distributed systems.",
		Improvements:   []string{"Quantify achievements", "Mention cloud platforms"},
	}
}

func TestFormatRendersAllSections(t *testing.T) {
	out := Format(sampleAssessment(), "cv.pdf", "Backend Engineer", generatedAt)

	assert.Contains(t, out, reportTitle)
	assert.Contains(t, out, "Report Generated: 2026-10-16 15:04:05")
	assert.Contains(t, out, "Resume File: cv.pdf")
	assert.Contains(t, out, "Target Job: Backend Engineer")
	assert.Contains(t, out, "MATCH SCORE: 73%")
	assert.Contains(t, out, "VERDICT: Moderate match")
	assert.Contains(t, out, "Experienced Go developer.\nStrong on distributed systems.")
	assert.Contains(t, out, "  1. Kubernetes\n  2. Terraform\n")
	assert.Contains(t, out, "  1. Quantify achievements\n  2. Mention cloud platforms\n")
	assert.True(t, strings.HasSuffix(out, reportFooterLine+"\n"+strings.Repeat("=", ruleWidth)+"\n"))

	skills := strings.Index(out, "MISSING SKILLS & KEYWORDS:")
	improvements := strings.Index(out, "RECOMMENDED IMPROVEMENTS:")
	assert.Less(t, strings.Index(out, "MATCH SCORE"), skills)
	assert.Less(t, skills, improvements)
}

func TestFormatPlaceholders(t *testing.T) {
	out := Format(&ai.Assessment{MatchScore: 95, ProfileSummary: "Great fit."}, "cv.pdf", "   ", generatedAt)

	assert.Contains(t, out, "Target Job: "+NotSpecified)
	assert.Contains(t, out, "  - "+NoMissingSkills)
	assert.Contains(t, out, "  - "+NoImprovements)
	assert.Contains(t, out, "VERDICT: Strong match")
}

func TestFormatIsDeterministic(t *testing.T) {
	first := Format(sampleAssessment(), "cv.pdf", "", generatedAt)
	second := Format(sampleAssessment(), "cv.pdf", "", generatedAt)
	assert.Equal(t, first, second)

	later := Format(sampleAssessment(), "cv.pdf", "", generatedAt.Add(time.Hour))
	strip := func(s string) string {
		lines := strings.Split(s, "\n")
		kept := lines[:0]
		for _, l := range lines {
			if !strings.HasPrefix(l, "Report Generated:") {
				kept = append(kept, l)
			}
		}
		return strings.Join(kept, "\n")
	}
	assert.Equal(t, strip(first), strip(later))
}

func TestFormatNilAssessment(t *testing.T) {
	out := Format(nil, "cv.pdf", "Engineer", generatedAt)
	assert.Contains(t, out, "MATCH SCORE: 0%")
}

func TestJobTitle(t *testing.T) {
	assert.Equal(t, NotSpecified, JobTitle(""))
	assert.Equal(t, "SRE", JobTitle(" SRE "))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "resume_analysis_20261016_150405.txt", FileName(generatedAt))
}
