package insight

import "github.com/profpocket/pocket-api/internal/models"

const projectionAlpha = 0.45

// Project smooths a score series with an exponentially weighted moving
// average and compares it against the recent mean. This is the optional
// online companion to the local engine; clients never depend on it.
func Project(evolutions []float64) models.ProjectionResult {
	if len(evolutions) == 0 {
		return models.ProjectionResult{Recommendation: "No data yet."}
	}

	smoothed := evolutions[0]
	for _, x := range evolutions[1:] {
		smoothed = projectionAlpha*x + (1-projectionAlpha)*smoothed
	}

	recent := evolutions
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}
	sum := 0.0
	for _, x := range recent {
		sum += x
	}
	avgRecent := sum / float64(len(recent))

	result := models.ProjectionResult{
		Trend:          smoothed - avgRecent,
		ProjectionNext: smoothed,
	}

	switch {
	case result.ProjectionNext >= 1.2:
		result.Recommendation = "Strong improvement: raise complexity gradually."
	case result.ProjectionNext >= 0.4:
		result.Recommendation = "Consistent improvement: keep the routine and focus on open needs."
	case result.ProjectionNext > -0.4:
		result.Recommendation = "Normal oscillation: pick one main goal per lesson."
	default:
		result.Recommendation = "Downward drift: lower the load and revisit fundamentals."
	}

	return result
}
