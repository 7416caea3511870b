package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/dira-lottery/internal/lottery"
)

// Header names recognised in CSV and HTML local-housing tables.
var (
	lotteryHeaders      = []string{"LotteryNumber", "הגרלה", "מספר הגרלה"}
	localHousingHeaders = []string{"LocalHousing", "לבני מקום", "דירות לבני מקום"}
)

func decodeLocalHousingJSON(r io.Reader) (lottery.LocalHousingTable, error) {
	var raw map[string]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing local housing table: %w", err)
	}

	table := make(lottery.LocalHousingTable, len(raw))
	for key, units := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parsing local housing table: key %q is not a lottery number", key)
		}
		table[n] = units
	}
	return table, nil
}

func decodeLocalHousingCSV(r io.Reader) (lottery.LocalHousingTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := readCSVHeader(reader, "LotteryNumber", "LocalHousing")
	if err != nil {
		return nil, fmt.Errorf("parsing local housing table: %w", err)
	}

	table := make(lottery.LocalHousingTable)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing local housing table: %w", err)
		}

		n, err := lottery.ParseLotteryNumber(header.get(row, "LotteryNumber"))
		if err != nil {
			return nil, fmt.Errorf("parsing local housing table: line %d: %w", line, err)
		}
		units, err := parseCount(header.get(row, "LocalHousing"))
		if err != nil {
			return nil, fmt.Errorf("parsing local housing table: line %d: %w", line, err)
		}
		table[n] = units
	}
	return table, nil
}

// decodeLocalHousingHTML reads the first table of a saved page. Columns are
// located by header text when a header row is present and default to the
// first two cells otherwise. Rows whose lottery cell is not a number, such as
// totals and spacer rows, are skipped.
func decodeLocalHousingHTML(r io.Reader) (lottery.LocalHousingTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("parsing local housing table: no table found")
	}

	lotteryCol, unitsCol := 0, 1
	tbl.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		headers := row.Find("th")
		if headers.Length() == 0 {
			return true
		}
		headers.Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if matchesAny(text, lotteryHeaders) {
				lotteryCol = j
			}
			if matchesAny(text, localHousingHeaders) {
				unitsCol = j
			}
		})
		return false
	})

	table := make(lottery.LocalHousingTable)
	var rowErr error
	tbl.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() <= max(lotteryCol, unitsCol) {
			return true
		}

		n, err := lottery.ParseLotteryNumber(strings.TrimSpace(cells.Eq(lotteryCol).Text()))
		if err != nil {
			return true
		}
		units, err := parseCount(strings.TrimSpace(cells.Eq(unitsCol).Text()))
		if err != nil {
			rowErr = fmt.Errorf("parsing local housing table: row %d: %w", i+1, err)
			return false
		}
		table[n] = units
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return table, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid unit count %q", s)
	}
	return n, nil
}

func matchesAny(text string, names []string) bool {
	for _, name := range names {
		if strings.EqualFold(text, name) {
			return true
		}
	}
	return false
}
