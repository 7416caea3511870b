package columns

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestBuild_IsValid(t *testing.T) {
	if err := Validate(Build()); err != nil {
		t.Errorf("Validate(Build()) = %v", err)
	}
}

func TestBuild_IsStable(t *testing.T) {
	if !reflect.DeepEqual(Build(), Build()) {
		t.Error("Build() returned different columns on repeated calls")
	}
}

func TestBuild_FieldOrder(t *testing.T) {
	want := []string{
		"LotteryNumber", "ProjectNumber", "CityDescription", "ProjectName",
		"ContractorDescription", "PricePerUnit", "GrantSize", "LotteryApparmentsNum",
		"LocalHousing", "_registrants", "_localRegistrants",
	}
	if got := Fields(Build()); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields(Build()) = %v, want %v", got, want)
	}
}

func TestBuild_Details(t *testing.T) {
	cols := Build()
	if len(cols) != 12 {
		t.Fatalf("len(Build()) = %d, want 12", len(cols))
	}

	city := cols[2]
	if city.Filter != FilterText {
		t.Errorf("city filter = %q, want %q", city.Filter, FilterText)
	}

	project := cols[3]
	if project.MinWidth != 90 || project.MaxWidth != 200 || project.Resizable == nil || !*project.Resizable {
		t.Errorf("project column = %+v", project)
	}

	if cols[5].CellRenderer != RendererCurrency || cols[6].CellRenderer != RendererCurrency {
		t.Error("price and grant columns should render as currency")
	}
	if cols[9].CellRenderer != RendererRegistrants || cols[10].CellRenderer != RendererLocalRegistrants {
		t.Error("subscriber columns should delegate to their renderers")
	}

	action := cols[11]
	if action.Field != "" || action.CellRenderer != RendererRegistration {
		t.Errorf("action column = %+v", action)
	}
	if action.Sortable == nil || *action.Sortable || action.Resizable == nil || *action.Resizable {
		t.Errorf("action column must be neither sortable nor resizable: %+v", action)
	}
}

func TestBuild_JSON(t *testing.T) {
	data, err := json.Marshal(Build())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`"field":"CityDescription"`,
		`"filter":"agTextColumnFilter"`,
		`"cellRenderer":"Registration"`,
		`"sortable":false`,
		`"resizable":true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr string
	}{
		{
			name:    "min above max",
			cols:    []Column{{Field: "a", MinWidth: 10, MaxWidth: 5}},
			wantErr: "exceeds maxWidth",
		},
		{
			name:    "zero width",
			cols:    []Column{{Field: "a"}},
			wantErr: "must be positive",
		},
		{
			name:    "duplicate field",
			cols:    []Column{{Field: "a", MinWidth: 1, MaxWidth: 1}, {Field: "a", MinWidth: 1, MaxWidth: 1}},
			wantErr: "duplicate field",
		},
		{
			name:    "no field no renderer",
			cols:    []Column{{MinWidth: 1, MaxWidth: 1}},
			wantErr: "needs a field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cols)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
