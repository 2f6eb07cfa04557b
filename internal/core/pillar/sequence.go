// Package pillar contains the pure numbering rules for pillar series:
// prefix validation, batch bounds, range expansion and the text format.
package pillar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/cadastre/internal/core/errs"
)

// DefaultMaxBatch caps how many numbers a single allocation may request.
const DefaultMaxBatch = 50

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/._-]{0,31}$`)

// ValidatePrefix checks a series prefix. Prefixes cannot contain spaces since
// the space separates prefix from sequence in the formatted number.
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return errs.Validation("invalid series prefix %q", prefix)
	}
	return nil
}

// ValidateCount checks a batch size against the ceiling.
func ValidateCount(count, maxBatch int) error {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	if count < 1 {
		return errs.Validation("allocation count must be positive (got %d)", count)
	}
	if count > maxBatch {
		return errs.Validation("allocation count %d exceeds the batch ceiling of %d", count, maxBatch)
	}
	return nil
}

// Format renders a pillar number as "<prefix> <n>".
func Format(prefix string, n int64) string {
	return prefix + " " + strconv.FormatInt(n, 10)
}

// Parse splits a formatted pillar number into prefix and sequence.
func Parse(number string) (prefix string, n int64, err error) {
	number = strings.TrimSpace(number)
	i := strings.LastIndexByte(number, ' ')
	if i <= 0 {
		return "", 0, errs.Validation("pillar number %q is not of the form \"<prefix> <n>\"", number)
	}
	prefix = strings.TrimSpace(number[:i])
	n, convErr := strconv.ParseInt(number[i+1:], 10, 64)
	if convErr != nil || n < 1 {
		return "", 0, errs.Validation("pillar number %q has no positive sequence", number)
	}
	if err := ValidatePrefix(prefix); err != nil {
		return "", 0, err
	}
	return prefix, n, nil
}

// Range is a contiguous block of issued sequence numbers, inclusive.
type Range struct {
	Prefix string
	First  int64
	Last   int64
}

// RangeEndingAt returns the range of count numbers that ends at last, as
// produced by an increment-by-count on the series counter.
func RangeEndingAt(prefix string, last int64, count int) Range {
	return Range{Prefix: prefix, First: last - int64(count) + 1, Last: last}
}

// Len is the number of values in the range.
func (r Range) Len() int {
	if r.Last < r.First {
		return 0
	}
	return int(r.Last - r.First + 1)
}

// Numbers expands the range into formatted pillar numbers.
func (r Range) Numbers() []string {
	out := make([]string, 0, r.Len())
	for n := r.First; n <= r.Last; n++ {
		out = append(out, Format(r.Prefix, n))
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("%s %d..%d", r.Prefix, r.First, r.Last)
}
