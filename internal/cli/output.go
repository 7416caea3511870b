package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pfrederiksen/dira-lottery/internal/columns"
	"github.com/pfrederiksen/dira-lottery/internal/format"
	"github.com/pfrederiksen/dira-lottery/internal/lottery"
	"github.com/pfrederiksen/dira-lottery/internal/odds"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f != FormatText && f != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return f, nil
}

// OddsResult is the output of the odds command.
type OddsResult struct {
	Model       odds.Model `json:"model"`
	LocalOdds   float64    `json:"local_odds"`
	GeneralOdds float64    `json:"general_odds"`
}

func newOddsResult(m odds.Model) *OddsResult {
	return &OddsResult{
		Model:       m,
		LocalOdds:   m.LocalOdds(),
		GeneralOdds: m.GeneralOdds(),
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteRows writes grid rows. Text output has one column per data column of
// the grid schema, under the Hebrew headers.
func WriteRows(w io.Writer, rows []lottery.Row, f OutputFormat) error {
	switch f {
	case FormatJSON:
		if rows == nil {
			rows = []lottery.Row{}
		}
		return writeJSON(w, rows)
	case FormatText:
		return writeRowsText(w, rows)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

func writeRowsText(w io.Writer, rows []lottery.Row) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No lotteries found.")
		return nil
	}

	var cols []columns.Column
	for _, c := range columns.Build() {
		if c.Field != "" {
			cols = append(cols, c)
		}
	}

	tw := newTable(w)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.HeaderName
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	cells := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			cells[i] = columns.CellText(row, c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal: %d lotteries\n", len(rows))
	return nil
}

// WriteCities writes the city list.
func WriteCities(w io.Writer, cities []lottery.City, f OutputFormat) error {
	switch f {
	case FormatJSON:
		if cities == nil {
			cities = []lottery.City{}
		}
		return writeJSON(w, cities)
	case FormatText:
		if len(cities) == 0 {
			fmt.Fprintln(w, "No cities found.")
			return nil
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "CODE\tCITY")
		for _, c := range cities {
			fmt.Fprintf(tw, "%s\t%s\n", c.Code, c.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteSubscribers writes registrant counts ordered by lottery number.
func WriteSubscribers(w io.Writer, subs lottery.SubscriberMap, f OutputFormat) error {
	switch f {
	case FormatJSON:
		if subs == nil {
			subs = lottery.SubscriberMap{}
		}
		return writeJSON(w, subs)
	case FormatText:
		if len(subs) == 0 {
			fmt.Fprintln(w, "No registrant counts fetched.")
			return nil
		}

		keys := make([]string, 0, len(subs))
		for k := range subs {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return lottery.LessLotteryNumber(keys[i], keys[j])
		})

		tw := newTable(w)
		fmt.Fprintln(tw, "LOTTERY\tREGISTRANTS\tLOCAL")
		for _, k := range keys {
			s := subs[k]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", k,
				format.FormatNumber(float64(s.Registrants)),
				format.FormatNumber(float64(s.LocalRegistrants)))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteChanges writes the differences between two exports.
func WriteChanges(w io.Writer, changes []lottery.Change, f OutputFormat) error {
	switch f {
	case FormatJSON:
		if changes == nil {
			changes = []lottery.Change{}
		}
		return writeJSON(w, changes)
	case FormatText:
		if len(changes) == 0 {
			fmt.Fprintln(w, "No changes.")
			return nil
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "LOTTERY\tPROJECT\tCHANGE\tOLD\tNEW")
		for _, c := range changes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.LotteryNumber, c.ProjectNumber,
				strings.ToUpper(string(c.ChangeType)), orDash(c.OldValue), orDash(c.NewValue))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nTotal: %d changes\n", len(changes))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteColumns writes the grid column schema.
func WriteColumns(w io.Writer, cols []columns.Column, f OutputFormat) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, cols)
	case FormatText:
		tw := newTable(w)
		fmt.Fprintln(tw, "FIELD\tHEADER\tMIN\tMAX\tRENDERER\tFILTER")
		for _, c := range cols {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
				orDash(c.Field), c.HeaderName, c.MinWidth, c.MaxWidth,
				orDash(string(c.CellRenderer)), orDash(string(c.Filter)))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteOdds writes the odds estimate.
func WriteOdds(w io.Writer, result *OddsResult, f OutputFormat) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		m := result.Model
		fmt.Fprintf(w, "Apartments: %d (local %d, disabled %d)\n",
			m.Apartments, m.LocalApartments, m.DisabledApartments)
		fmt.Fprintf(w, "Registrants: %s (local %s)\n",
			format.FormatNumber(float64(m.TotalRegistrants)),
			format.FormatNumber(float64(m.LocalRegistrants)))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Local resident odds:  %s\n", format.Percent(result.LocalOdds))
		fmt.Fprintf(w, "General odds:         %s\n", format.Percent(result.GeneralOdds))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

func orDash(s string) string {
	if s == "" {
		return columns.Placeholder
	}
	return s
}
