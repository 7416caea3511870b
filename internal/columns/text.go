package columns

import (
	"github.com/pfrederiksen/dira-lottery/internal/format"
	"github.com/pfrederiksen/dira-lottery/internal/lottery"
)

// Placeholder is shown for values that are unknown or were not fetched.
const Placeholder = "-"

// CellText renders one cell for plain-text output. Columns delegating to the
// currency renderer are formatted as shekels; other numbers as grouped integers.
// Columns without a field render empty.
func CellText(row lottery.Row, col Column) string {
	switch col.Field {
	case "LotteryNumber":
		return row.LotteryNumber
	case "ProjectNumber":
		return row.ProjectNumber
	case "CityDescription":
		return row.CityDescription
	case "ProjectName":
		return row.ProjectName
	case "ContractorDescription":
		return row.ContractorDescription
	case "PricePerUnit":
		return amount(row.PricePerUnit, col)
	case "GrantSize":
		return amount(row.GrantSize, col)
	case "LotteryApparmentsNum":
		return format.FormatNumber(float64(row.LotteryApparmentsNum))
	case "LocalHousing":
		return format.FormatOptional(row.LocalHousing, Placeholder)
	case "_registrants":
		return format.FormatOptional(row.Registrants, Placeholder)
	case "_localRegistrants":
		return format.FormatOptional(row.LocalRegistrants, Placeholder)
	default:
		return ""
	}
}

func amount(v float64, col Column) string {
	if col.CellRenderer == RendererCurrency {
		return format.FormatCurrency(v)
	}
	return format.FormatNumber(v)
}
