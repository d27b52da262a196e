package services

import (
	"sort"
	"strings"
	"time"

	"journal-editorial-api/models"
)

// Composite score weights for existing reviewers.
const (
	weightExpertise   = 0.40
	weightWorkload    = 0.20
	weightQuality     = 0.20
	weightReliability = 0.15
	weightRecency     = 0.05
)

// Scoring constants for author-recommended reviewers who are not yet users.
const (
	recommendedBaseScore        = 0.7
	recommendedExpertiseBonus   = 0.2
	recommendedAffiliationBonus = 0.1
	// Affiliation strings longer than this look like real institutional
	// affiliations rather than abbreviations.
	minInstitutionalAffiliationLen = 20
)

// Candidate sources, recorded so the orchestrator can apply the
// recommended-reviewer quota and report where each pick came from.
const (
	SourceSystem              = "system"
	SourceRecommendedExisting = "recommended_existing"
	SourceRecommendedNew      = "recommended_new"
)

// ReviewerCandidate is one scored entry in the merged candidate pool.
type ReviewerCandidate struct {
	UserID        int     `json:"user_id,omitempty"` // 0 for recommended_new
	RecommendedID int     `json:"recommended_id,omitempty"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Source        string  `json:"source"`
	Score         float64 `json:"score"`
	CurrentLoad   int     `json:"current_load"`
}

// ScoreReviewer computes the composite suitability score in [0,1] for an
// existing reviewer profile against an article's keywords. Eligibility is
// checked by the caller before scoring; this function only does the math.
func ScoreReviewer(profile *models.ReviewerProfile, keywords []string, now time.Time) float64 {
	score := weightExpertise*expertiseMatchScore(profile.ExpertiseList(), keywords) +
		weightWorkload*workloadScore(profile.CurrentReviewLoad, profile.MaxReviewsPerMonth) +
		weightQuality*profile.QualityScore/100 +
		weightReliability*reliabilityScore(profile.CompletedReviews, profile.LateReviews) +
		weightRecency*recencyScore(profile.LastReviewDate, now)
	return clampScore(score)
}

// expertiseMatchScore is the overlap between reviewer expertise terms and
// article keywords, using case-insensitive substring matching in either
// direction, normalised by the larger of the two sets.
func expertiseMatchScore(expertise, keywords []string) float64 {
	if len(expertise) == 0 || len(keywords) == 0 {
		return 0
	}
	matched := 0
	for _, e := range expertise {
		if termMatchesAny(e, keywords) {
			matched++
		}
	}
	denom := len(expertise)
	if len(keywords) > denom {
		denom = len(keywords)
	}
	return float64(matched) / float64(denom)
}

func termMatchesAny(term string, candidates []string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return false
	}
	for _, c := range candidates {
		k := strings.ToLower(strings.TrimSpace(c))
		if k == "" {
			continue
		}
		if strings.Contains(t, k) || strings.Contains(k, t) {
			return true
		}
	}
	return false
}

func workloadScore(current, max int) float64 {
	if max <= 0 {
		return 0
	}
	s := 1 - float64(current)/float64(max)
	if s < 0 {
		return 0
	}
	return s
}

// reliabilityScore weighs completed reviews against late ones; a late review
// counts double. Reviewers with no history get a neutral 0.5 prior.
func reliabilityScore(completed, late int) float64 {
	if completed <= 0 {
		return 0.5
	}
	return float64(completed) / float64(completed+2*late)
}

// recencyScore prefers reviewers whose last review landed between 30 and 180
// days ago: more recent ones are still busy wrapping up, staler ones may
// have drifted out of the field.
func recencyScore(lastReview *time.Time, now time.Time) float64 {
	if lastReview == nil {
		return 1
	}
	days := now.Sub(*lastReview).Hours() / 24
	switch {
	case days < 30:
		return 0.7
	case days > 180:
		return 0.3
	default:
		return 1
	}
}

// ScoreRecommendedReviewer estimates a score for an author-recommended
// reviewer who does not exist as a user yet, from the author-supplied free
// text alone.
func ScoreRecommendedReviewer(rec *models.RecommendedReviewer, keywords []string) float64 {
	score := recommendedBaseScore
	for _, token := range strings.FieldsFunc(rec.Expertise, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	}) {
		if termMatchesAny(token, keywords) {
			score += recommendedExpertiseBonus
			break
		}
	}
	if len(strings.TrimSpace(rec.Affiliation)) > minInstitutionalAffiliationLen {
		score += recommendedAffiliationBonus
	}
	return clampScore(score)
}

// rankCandidates sorts descending by score, breaking ties by lowest current
// load and then ascending user id so results are reproducible.
func rankCandidates(candidates []ReviewerCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].CurrentLoad != candidates[j].CurrentLoad {
			return candidates[i].CurrentLoad < candidates[j].CurrentLoad
		}
		return candidates[i].UserID < candidates[j].UserID
	})
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
