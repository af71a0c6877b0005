package validate

import (
	"regexp"
	"strconv"
)

// MaxReviewCountDigits bounds the length of a review count.
const MaxReviewCountDigits = 10

var reviewCountPattern = regexp.MustCompile(`^(?:0|[1-9]\d{0,9})$`)

// ReviewCount reports whether s is a non-negative integer written without
// sign, leading zeros or more than MaxReviewCountDigits digits.
func ReviewCount(s string) bool {
	if !reviewCountPattern.MatchString(s) {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
