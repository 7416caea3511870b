package lottery

import (
	"sort"
	"strconv"
)

// ChangeType names what changed about a lottery between two runs.
type ChangeType string

const (
	ChangeNew              ChangeType = "new"
	ChangeRemoved          ChangeType = "removed"
	ChangeLocalHousing     ChangeType = "local_housing"
	ChangeRegistrants      ChangeType = "registrants"
	ChangeLocalRegistrants ChangeType = "local_registrants"
)

// Change is one difference between a previous and a current set of rows.
// Unknown counts are empty strings.
type Change struct {
	LotteryNumber string     `json:"lottery_number"`
	ProjectNumber string     `json:"project_number"`
	ChangeType    ChangeType `json:"change_type"`
	OldValue      string     `json:"old_value"`
	NewValue      string     `json:"new_value"`
}

// Diff compares rows by lottery number and returns new and removed lotteries
// plus changed local-housing and registrant counts. Changes are sorted by
// lottery number, numerically. A nil previous reports every current row as new.
func Diff(previous, current []Row) []Change {
	before := indexRows(previous)
	after := indexRows(current)

	var changes []Change

	for num, cur := range after {
		prev, exists := before[num]
		if !exists {
			changes = append(changes, Change{
				LotteryNumber: num,
				ProjectNumber: cur.ProjectNumber,
				ChangeType:    ChangeNew,
				NewValue:      cur.ProjectName,
			})
			continue
		}

		changes = appendIfChanged(changes, cur, ChangeLocalHousing, prev.LocalHousing, cur.LocalHousing)
		changes = appendIfChanged(changes, cur, ChangeRegistrants, prev.Registrants, cur.Registrants)
		changes = appendIfChanged(changes, cur, ChangeLocalRegistrants, prev.LocalRegistrants, cur.LocalRegistrants)
	}

	for num, prev := range before {
		if _, exists := after[num]; !exists {
			changes = append(changes, Change{
				LotteryNumber: num,
				ProjectNumber: prev.ProjectNumber,
				ChangeType:    ChangeRemoved,
				OldValue:      prev.ProjectName,
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].LotteryNumber != changes[j].LotteryNumber {
			return LessLotteryNumber(changes[i].LotteryNumber, changes[j].LotteryNumber)
		}
		return changes[i].ChangeType < changes[j].ChangeType
	})

	return changes
}

func indexRows(rows []Row) map[string]Row {
	index := make(map[string]Row, len(rows))
	for _, r := range rows {
		index[r.LotteryNumber] = r
	}
	return index
}

func appendIfChanged(changes []Change, row Row, kind ChangeType, old, cur *int) []Change {
	oldValue, newValue := countString(old), countString(cur)
	if oldValue == newValue {
		return changes
	}
	return append(changes, Change{
		LotteryNumber: row.LotteryNumber,
		ProjectNumber: row.ProjectNumber,
		ChangeType:    kind,
		OldValue:      oldValue,
		NewValue:      newValue,
	})
}

func countString(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
