package enrich

import "math"

// Popularity tiers assigned by Tier.
const (
	TierHigh   = "High"
	TierMedium = "Medium"
	TierLow    = "Low"
)

const (
	ratingWeight = 5.0

	maxRecencyScore  = 30.0
	recencyPerDecade = 3.0

	maxCastScore = 20.0
	castWeight   = 2.0

	tierHighThreshold   = 70.0
	tierMediumThreshold = 50.0
)

// Score computes the 0-100 composite enrichment score for a movie from its
// rating, release year, and cast size. A missing rating counts as 0 and a
// missing release year earns no recency credit. The result is rounded to two
// decimal places. Pure and total: any input yields a value.
func Score(rating *float64, releaseYear *int, actorCount, currentYear int) float64 {
	var ratingScore float64
	if rating != nil {
		ratingScore = *rating * ratingWeight
	}

	var recencyScore float64
	if releaseYear != nil {
		yearsAgo := float64(currentYear - *releaseYear)
		recencyScore = math.Max(0, maxRecencyScore-yearsAgo/10*recencyPerDecade)
	}

	castScore := math.Min(maxCastScore, float64(actorCount)*castWeight)

	total := ratingScore + recencyScore + castScore
	return math.Round(total*100) / 100
}

// Tier buckets an enrichment score into High (>= 70), Medium (>= 50), or Low.
func Tier(score float64) string {
	switch {
	case score >= tierHighThreshold:
		return TierHigh
	case score >= tierMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
