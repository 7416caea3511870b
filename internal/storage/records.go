package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pfrederiksen/dira-lottery/internal/lottery"
)

// flexString accepts a JSON string or number. The ministry feed is not
// consistent about quoting lottery, project and city codes.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

type recordJSON struct {
	LotteryNumber         flexString `json:"LotteryNumber"`
	ProjectNumber         flexString `json:"ProjectNumber"`
	CityCode              flexString `json:"CityCode"`
	CityDescription       string     `json:"CityDescription"`
	ProjectName           string     `json:"ProjectName"`
	ContractorDescription string     `json:"ContractorDescription"`
	PricePerUnit          float64    `json:"PricePerUnit"`
	GrantSize             float64    `json:"GrantSize"`
	LotteryApparmentsNum  int        `json:"LotteryApparmentsNum"`
}

func (r recordJSON) record() lottery.Record {
	return lottery.Record{
		LotteryNumber:         string(r.LotteryNumber),
		ProjectNumber:         string(r.ProjectNumber),
		CityCode:              string(r.CityCode),
		CityDescription:       r.CityDescription,
		ProjectName:           r.ProjectName,
		ContractorDescription: r.ContractorDescription,
		PricePerUnit:          r.PricePerUnit,
		GrantSize:             r.GrantSize,
		LotteryApparmentsNum:  r.LotteryApparmentsNum,
	}
}

func decodeRecordsJSON(r io.Reader) ([]lottery.Record, error) {
	var raw []recordJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}

	records := make([]lottery.Record, len(raw))
	for i, rec := range raw {
		records[i] = rec.record()
	}
	return records, nil
}

// csvHeader maps column names to indexes. A UTF-8 BOM on the first name is dropped.
type csvHeader map[string]int

func readCSVHeader(reader *csv.Reader, required ...string) (csvHeader, error) {
	names, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	header := make(csvHeader, len(names))
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[strings.TrimSpace(name)] = i
	}

	for _, name := range required {
		if _, ok := header[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return header, nil
}

func (h csvHeader) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCSVNumber parses a number that may carry thousands separators.
// An empty cell is zero.
func parseCSVNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func decodeRecordsCSV(r io.Reader) ([]lottery.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := readCSVHeader(reader, "LotteryNumber", "ProjectNumber")
	if err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}

	records := make([]lottery.Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing records: %w", err)
		}

		rec := lottery.Record{
			LotteryNumber:         header.get(row, "LotteryNumber"),
			ProjectNumber:         header.get(row, "ProjectNumber"),
			CityCode:              header.get(row, "CityCode"),
			CityDescription:       header.get(row, "CityDescription"),
			ProjectName:           header.get(row, "ProjectName"),
			ContractorDescription: header.get(row, "ContractorDescription"),
		}

		if rec.PricePerUnit, err = parseCSVNumber(header.get(row, "PricePerUnit")); err != nil {
			return nil, fmt.Errorf("parsing records: line %d: PricePerUnit: %w", line, err)
		}
		if rec.GrantSize, err = parseCSVNumber(header.get(row, "GrantSize")); err != nil {
			return nil, fmt.Errorf("parsing records: line %d: GrantSize: %w", line, err)
		}
		apartments, err := parseCSVNumber(header.get(row, "LotteryApparmentsNum"))
		if err != nil {
			return nil, fmt.Errorf("parsing records: line %d: LotteryApparmentsNum: %w", line, err)
		}
		rec.LotteryApparmentsNum = int(apartments)

		records = append(records, rec)
	}
	return records, nil
}
