package lottery

// Record is one lottery row as published by the housing ministry.
type Record struct {
	LotteryNumber         string  `json:"LotteryNumber"`
	ProjectNumber         string  `json:"ProjectNumber"`
	CityCode              string  `json:"CityCode"`
	CityDescription       string  `json:"CityDescription"`
	ProjectName           string  `json:"ProjectName"`
	ContractorDescription string  `json:"ContractorDescription"`
	PricePerUnit          float64 `json:"PricePerUnit"`
	GrantSize             float64 `json:"GrantSize"`
	LotteryApparmentsNum  int     `json:"LotteryApparmentsNum"`
}

// LocalHousingTable maps a lottery number to the units reserved for local residents.
type LocalHousingTable map[int]int

// EnrichedRecord is a Record plus its local-housing allocation.
// LocalHousing is nil when the allocation is unknown; it is never zero by default.
type EnrichedRecord struct {
	Record
	LocalHousing *int `json:"LocalHousing"`
}

// City is one entry of the city index.
type City struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Ref identifies a single lottery inside its project.
type Ref struct {
	ProjectNumber string `json:"ProjectNumber"`
	LotteryNumber string `json:"LotteryNumber"`
}

// Registrants holds the subscriber counts of one lottery.
type Registrants struct {
	Registrants      int `json:"_registrants"`
	LocalRegistrants int `json:"_localRegistrants"`
}

// SubscriberMap maps the verbatim LotteryNumber to its subscriber counts.
type SubscriberMap map[string]Registrants

// Row is what the grid displays: an enriched record plus subscriber counts,
// which stay nil when they were not fetched.
type Row struct {
	EnrichedRecord
	Registrants      *int `json:"_registrants"`
	LocalRegistrants *int `json:"_localRegistrants"`
}

// Refs returns the (project, lottery) pair of every record, in order.
func Refs(records []Record) []Ref {
	refs := make([]Ref, len(records))
	for i, r := range records {
		refs[i] = Ref{ProjectNumber: r.ProjectNumber, LotteryNumber: r.LotteryNumber}
	}
	return refs
}
