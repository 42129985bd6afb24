package proposal

import (
	"math"
	"time"
)

// IndexForDate maps a UTC calendar date onto [0, n). The same date always
// yields the same index: the date string is hashed with the 31x+c rolling
// hash in 32-bit arithmetic, pushed through a sin-based pseudo-random
// transform, and reduced modulo n. Display rotation only, nothing here is
// fairness- or security-sensitive.
func IndexForDate(date time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	day := date.UTC().Format("2006-01-02")
	var hash int32
	for i := 0; i < len(day); i++ {
		hash = hash*31 + int32(day[i])
	}
	seed := hash
	if seed < 0 {
		seed = -seed
	}
	x := math.Floor(math.Sin(float64(seed)) * 10000)
	return int(math.Abs(x)) % n
}

// PickForDate returns the population element selected for the given UTC
// date. The population must be non-empty.
func PickForDate(date time.Time, population []int) int {
	return population[IndexForDate(date, len(population))]
}
