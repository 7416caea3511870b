package lottery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a lottery number that does not start with an integer.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoDigits = errors.New("no leading digits")

// ParseLotteryNumber parses the integer prefix of s in base 10.
// Leading whitespace and an optional sign are accepted and anything after the
// first non-digit is ignored, so "1943" and " 1943a" both yield 1943.
func ParseLotteryNumber(s string) (int, error) {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(trimmed) && (trimmed[end] == '+' || trimmed[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, &ParseError{Field: "LotteryNumber", Value: s, Err: errNoDigits}
	}

	n, err := strconv.Atoi(trimmed[:end])
	if err != nil {
		return 0, &ParseError{Field: "LotteryNumber", Value: s, Err: err}
	}
	return n, nil
}

// LessLotteryNumber orders lottery numbers numerically. Numbers without a
// numeric prefix sort after all others, by text.
func LessLotteryNumber(a, b string) bool {
	na, errA := ParseLotteryNumber(a)
	nb, errB := ParseLotteryNumber(b)

	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Enrich joins records with the local-housing table by parsed lottery number.
// The result has the same length and order as records. A lottery number that
// does not parse, or has no entry in table, leaves LocalHousing nil.
func Enrich(records []Record, table LocalHousingTable) []EnrichedRecord {
	enriched := make([]EnrichedRecord, len(records))
	for i, r := range records {
		enriched[i] = EnrichedRecord{Record: r}

		n, err := ParseLotteryNumber(r.LotteryNumber)
		if err != nil {
			continue
		}
		if units, ok := table[n]; ok {
			enriched[i].LocalHousing = &units
		}
	}
	return enriched
}

// ExtractCities returns one entry per distinct CityCode in encounter order.
// The first description seen for a code wins, even if later records disagree.
func ExtractCities(records []Record) []City {
	seen := make(map[string]bool)
	cities := make([]City, 0)
	for _, r := range records {
		if seen[r.CityCode] {
			continue
		}
		seen[r.CityCode] = true
		cities = append(cities, City{Code: r.CityCode, Description: r.CityDescription})
	}
	return cities
}
