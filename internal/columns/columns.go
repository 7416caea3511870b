// Package columns declares the data-grid columns of the lottery dashboard.
//
// The column list is static data handed to an external grid component. Cell
// renderers are referenced by name only; the grid resolves and invokes them.
package columns

import (
	"fmt"
)

// Renderer names an external cell-rendering capability.
type Renderer string

const (
	RendererNone             Renderer = ""
	RendererCurrency         Renderer = "currency"
	RendererRegistrants      Renderer = "Registrants"
	RendererLocalRegistrants Renderer = "LocalRegistrants"
	RendererRegistration     Renderer = "Registration"
)

// Filter names a grid filter kind.
type Filter string

const (
	FilterNone Filter = ""
	FilterText Filter = "agTextColumnFilter"
)

// Column describes how the grid shows one field.
type Column struct {
	Field        string   `json:"field,omitempty"`
	HeaderName   string   `json:"headerName,omitempty"`
	MinWidth     int      `json:"minWidth"`
	MaxWidth     int      `json:"maxWidth"`
	Filter       Filter   `json:"filter,omitempty"`
	CellRenderer Renderer `json:"cellRenderer,omitempty"`
	Resizable    *bool    `json:"resizable,omitempty"`
	Sortable     *bool    `json:"sortable,omitempty"`
}

func flag(b bool) *bool {
	return &b
}

// Build returns the dashboard columns in display order.
func Build() []Column {
	return []Column{
		{Field: "LotteryNumber", HeaderName: "הגרלה", MinWidth: 85, MaxWidth: 85},
		{Field: "ProjectNumber", HeaderName: "מתחם", MinWidth: 85, MaxWidth: 85},
		{Field: "CityDescription", HeaderName: "עיר", MinWidth: 120, MaxWidth: 120, Filter: FilterText},
		{Field: "ProjectName", HeaderName: "פרויקט", MinWidth: 90, MaxWidth: 200, Resizable: flag(true)},
		{Field: "ContractorDescription", HeaderName: "קבלן", MinWidth: 90, MaxWidth: 300, Resizable: flag(true)},
		{Field: "PricePerUnit", HeaderName: `מחיר למ"ר`, MinWidth: 120, MaxWidth: 120, CellRenderer: RendererCurrency},
		{Field: "GrantSize", HeaderName: "מענק", MinWidth: 120, MaxWidth: 120, CellRenderer: RendererCurrency},
		{Field: "LotteryApparmentsNum", HeaderName: "דירות", MinWidth: 100, MaxWidth: 100},
		{Field: "LocalHousing", HeaderName: "לבני מקום", MinWidth: 110, MaxWidth: 110},
		{Field: "_registrants", HeaderName: "נרשמו", MinWidth: 90, MaxWidth: 90, CellRenderer: RendererRegistrants},
		{Field: "_localRegistrants", HeaderName: "בני מקום", MinWidth: 110, MaxWidth: 110, CellRenderer: RendererLocalRegistrants},
		{MinWidth: 150, MaxWidth: 150, CellRenderer: RendererRegistration, Sortable: flag(false), Resizable: flag(false)},
	}
}

// Validate checks that widths are positive and ordered and that every column
// either names a unique field or delegates to a renderer.
func Validate(cols []Column) error {
	seen := make(map[string]bool)
	for i, c := range cols {
		if c.MinWidth <= 0 || c.MaxWidth <= 0 {
			return fmt.Errorf("column %d (%s): widths must be positive", i, c.Field)
		}
		if c.MinWidth > c.MaxWidth {
			return fmt.Errorf("column %d (%s): minWidth %d exceeds maxWidth %d", i, c.Field, c.MinWidth, c.MaxWidth)
		}
		if c.Field == "" {
			if c.CellRenderer == RendererNone {
				return fmt.Errorf("column %d: needs a field or a cell renderer", i)
			}
			continue
		}
		if seen[c.Field] {
			return fmt.Errorf("column %d: duplicate field %s", i, c.Field)
		}
		seen[c.Field] = true
	}
	return nil
}

// Fields returns the field keys of cols, skipping field-less columns.
func Fields(cols []Column) []string {
	fields := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Field != "" {
			fields = append(fields, c.Field)
		}
	}
	return fields
}
