package validate

import (
	"regexp"
	"strconv"
)

// MaxRating is the upper bound of the rating scale.
const MaxRating = 5

// A whole star value 0-5, optionally followed by a quarter-point fraction.
var ratingPattern = regexp.MustCompile(`^[0-5](?:\.(?:0|25|5|75))?$`)

// Rating reports whether s is a rating between 0 and 5 inclusive with
// quarter-point granularity ("4", "4.0", "4.25", "4.5", "4.75").
func Rating(s string) bool {
	if !ratingPattern.MatchString(s) {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return v >= 0 && v <= MaxRating
}

// RatingFractions lists the fractions allowed after the decimal point.
func RatingFractions() []string {
	return []string{"0", "25", "5", "75"}
}
