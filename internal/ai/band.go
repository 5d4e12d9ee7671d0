package ai

// Band is a coarse rating derived from a match score.
type Band string

const (
	BandStrong   Band = "strong"
	BandModerate Band = "moderate"
	BandWeak     Band = "weak"
)

// BandFor maps a score to its band: 80 and above is strong, 60 to 79 moderate,
// everything else weak.
func BandFor(score int) Band {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandModerate
	default:
		return BandWeak
	}
}

// Label is the human readable verdict for the band.
func (b Band) Label() string {
	switch b {
	case BandStrong:
		return "Strong match"
	case BandModerate:
		return "Moderate match"
	default:
		return "Weak match"
	}
}
