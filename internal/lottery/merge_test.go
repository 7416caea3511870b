package lottery

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	enriched := Enrich(sampleRecords(), LocalHousingTable{1943: 51})
	subs := SubscriberMap{
		"1943": {Registrants: 3526, LocalRegistrants: 438},
		"1950": {Registrants: 120, LocalRegistrants: 0},
	}

	rows := Merge(enriched, subs)

	if len(rows) != len(enriched) {
		t.Fatalf("len(Merge()) = %d, want %d", len(rows), len(enriched))
	}
	if rows[0].Registrants == nil || *rows[0].Registrants != 3526 {
		t.Errorf("rows[0].Registrants = %v, want 3526", rows[0].Registrants)
	}
	if rows[0].LocalRegistrants == nil || *rows[0].LocalRegistrants != 438 {
		t.Errorf("rows[0].LocalRegistrants = %v, want 438", rows[0].LocalRegistrants)
	}
	if rows[1].Registrants != nil {
		t.Errorf("rows[1] has no subscriber entry, got %d", *rows[1].Registrants)
	}
	if rows[2].LocalRegistrants == nil || *rows[2].LocalRegistrants != 0 {
		t.Errorf("rows[2].LocalRegistrants = %v, want 0", rows[2].LocalRegistrants)
	}
}

func TestRow_JSON(t *testing.T) {
	rows := Merge(Enrich(sampleRecords()[:2], LocalHousingTable{1943: 51}), SubscriberMap{
		"1943": {Registrants: 3526, LocalRegistrants: 438},
	})

	data, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`"LotteryNumber":"1943"`,
		`"LocalHousing":51`,
		`"_registrants":3526`,
		`"_localRegistrants":438`,
		`"LocalHousing":null`,
		`"_registrants":null`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON %s missing %s", out, want)
		}
	}
}

func TestFilterByCity(t *testing.T) {
	records := sampleRecords()

	if got := FilterByCity(records, ""); len(got) != len(records) {
		t.Errorf("FilterByCity(\"\") returned %d records, want %d", len(got), len(records))
	}

	got := FilterByCity(records, "8600")
	if len(got) != 2 || got[0].LotteryNumber != "1943" || got[1].LotteryNumber != "1950" {
		t.Errorf("FilterByCity(8600) = %+v", got)
	}
}
