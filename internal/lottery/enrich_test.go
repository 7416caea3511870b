package lottery

import (
	"errors"
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{LotteryNumber: "1943", ProjectNumber: "1452", CityCode: "8600", CityDescription: "רמת גן", ProjectName: "מגדלי הים", PricePerUnit: 9800, GrantSize: 40000, LotteryApparmentsNum: 102},
		{LotteryNumber: "1944", ProjectNumber: "1453", CityCode: "5000", CityDescription: "תל אביב", ProjectName: "נווה עופר", PricePerUnit: 12500, LotteryApparmentsNum: 40},
		{LotteryNumber: "1950", ProjectNumber: "1460", CityCode: "8600", CityDescription: "רמת-גן", ProjectName: "הבורסה", PricePerUnit: 10100, LotteryApparmentsNum: 12},
		{LotteryNumber: "abc", ProjectNumber: "1461", CityCode: "7900", CityDescription: "פתח תקווה"},
	}
}

func TestParseLotteryNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "plain", input: "1943", want: 1943},
		{name: "leading whitespace", input: "  1943", want: 1943},
		{name: "trailing garbage", input: "1943a", want: 1943},
		{name: "decimal point", input: "1943.7", want: 1943},
		{name: "explicit sign", input: "+12", want: 12},
		{name: "negative", input: "-5", want: -5},
		{name: "leading zeros", input: "007", want: 7},
		{name: "empty", input: "", wantErr: true},
		{name: "letters first", input: "a1943", wantErr: true},
		{name: "sign only", input: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLotteryNumber(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLotteryNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("error %v is not a *ParseError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseLotteryNumber(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnrich_PreservesLengthOrderAndFields(t *testing.T) {
	records := sampleRecords()
	original := append([]Record(nil), records...)
	table := LocalHousingTable{1943: 51, 1950: 6}

	enriched := Enrich(records, table)

	if len(enriched) != len(records) {
		t.Fatalf("len(Enrich()) = %d, want %d", len(enriched), len(records))
	}
	for i := range records {
		if !reflect.DeepEqual(enriched[i].Record, records[i]) {
			t.Errorf("enriched[%d].Record = %+v, want %+v", i, enriched[i].Record, records[i])
		}
	}
	if !reflect.DeepEqual(records, original) {
		t.Error("Enrich() mutated its input")
	}
}

func TestEnrich_LooksUpByParsedInteger(t *testing.T) {
	records := []Record{{LotteryNumber: "1943"}, {LotteryNumber: " 1950x"}}
	table := LocalHousingTable{1943: 51, 1950: 6}

	enriched := Enrich(records, table)

	if enriched[0].LocalHousing == nil || *enriched[0].LocalHousing != 51 {
		t.Errorf("LocalHousing for \"1943\" = %v, want 51", enriched[0].LocalHousing)
	}
	if enriched[1].LocalHousing == nil || *enriched[1].LocalHousing != 6 {
		t.Errorf("LocalHousing for \" 1950x\" = %v, want 6", enriched[1].LocalHousing)
	}
}

func TestEnrich_MissingIsNilNotZero(t *testing.T) {
	table := LocalHousingTable{1943: 51, 1944: 0}
	enriched := Enrich(sampleRecords(), table)

	if enriched[1].LocalHousing == nil || *enriched[1].LocalHousing != 0 {
		t.Errorf("explicit zero entry should be kept, got %v", enriched[1].LocalHousing)
	}
	if enriched[2].LocalHousing != nil {
		t.Errorf("absent key should be nil, got %d", *enriched[2].LocalHousing)
	}
	if enriched[3].LocalHousing != nil {
		t.Errorf("unparseable lottery number should be nil, got %d", *enriched[3].LocalHousing)
	}
}

func TestEnrich_Empty(t *testing.T) {
	if got := Enrich(nil, LocalHousingTable{1: 1}); len(got) != 0 {
		t.Errorf("Enrich(nil) = %v, want empty", got)
	}
}

func TestExtractCities(t *testing.T) {
	cities := ExtractCities(sampleRecords())

	want := []City{
		{Code: "8600", Description: "רמת גן"},
		{Code: "5000", Description: "תל אביב"},
		{Code: "7900", Description: "פתח תקווה"},
	}
	if !reflect.DeepEqual(cities, want) {
		t.Errorf("ExtractCities() = %+v, want %+v", cities, want)
	}
}

func TestExtractCities_OneEntryPerCode(t *testing.T) {
	records := []Record{
		{CityCode: "1"}, {CityCode: "2"}, {CityCode: "1"}, {CityCode: "3"}, {CityCode: "2"},
	}
	cities := ExtractCities(records)

	codes := make([]string, len(cities))
	for i, c := range cities {
		codes[i] = c.Code
	}
	if !reflect.DeepEqual(codes, []string{"1", "2", "3"}) {
		t.Errorf("codes = %v, want [1 2 3]", codes)
	}
}

func TestRefs(t *testing.T) {
	refs := Refs(sampleRecords()[:2])
	want := []Ref{
		{ProjectNumber: "1452", LotteryNumber: "1943"},
		{ProjectNumber: "1453", LotteryNumber: "1944"},
	}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("Refs() = %+v, want %+v", refs, want)
	}
}

func TestLessLotteryNumber(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"9", "10", true},
		{"10", "9", false},
		{"100", "10", false},
		{"12", "abc", true},
		{"abc", "12", false},
		{"abc", "abd", true},
		{"07", "7", true},
		{"7", "7", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"<"+tt.b, func(t *testing.T) {
			if got := LessLotteryNumber(tt.a, tt.b); got != tt.want {
				t.Errorf("LessLotteryNumber(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
