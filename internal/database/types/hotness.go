package types

import (
	"math"
	"time"
)

// hotnessEpoch is the fixed reference point the age term is measured
// against, expressed in seconds past the Unix epoch.
const hotnessEpoch = 1134028003

// Hotness ranks a topic by combining vote magnitude and age: votes count
// logarithmically, recency linearly, so newer content of equal score ranks
// above older content. The result is rounded to 7 decimals.
func Hotness(votes int64, created time.Time) float64 {
	secs := float64(created.UnixNano())/float64(time.Second) - hotnessEpoch
	order := math.Log10(math.Max(math.Abs(float64(votes)), 1))

	var sign float64
	switch {
	case votes > 0:
		sign = 1
	case votes < 0:
		sign = -1
	}

	return math.Round((order+sign*secs/45000)*1e7) / 1e7
}
