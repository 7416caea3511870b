package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/dira-lottery/internal/lottery"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone          SortOrder = ""
	SortByLottery     SortOrder = "lottery"
	SortByCity        SortOrder = "city"
	SortByRegistrants SortOrder = "registrants"
)

// ParseSortOrder validates a --sort value. Empty keeps input order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortByLottery, SortByCity, SortByRegistrants:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'lottery', 'city' or 'registrants')", s)
	}
}

// sortRows sorts rows in place. The sort is stable so equal keys keep input order.
func sortRows(rows []lottery.Row, order SortOrder) {
	switch order {
	case SortByLottery:
		sort.SliceStable(rows, func(i, j int) bool {
			return lottery.LessLotteryNumber(rows[i].LotteryNumber, rows[j].LotteryNumber)
		})
	case SortByCity:
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].CityDescription != rows[j].CityDescription {
				return rows[i].CityDescription < rows[j].CityDescription
			}
			return lottery.LessLotteryNumber(rows[i].LotteryNumber, rows[j].LotteryNumber)
		})
	case SortByRegistrants:
		sort.SliceStable(rows, func(i, j int) bool {
			return registrantsMore(rows[i].Registrants, rows[j].Registrants)
		})
	}
}

// registrantsMore puts the most contested lotteries first and unknown counts last.
func registrantsMore(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
