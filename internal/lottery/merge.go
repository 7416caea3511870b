package lottery

// Merge attaches subscriber counts to enriched records, keyed by the verbatim
// LotteryNumber. Records without an entry in subs keep nil counts.
func Merge(records []EnrichedRecord, subs SubscriberMap) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{EnrichedRecord: r}
		if s, ok := subs[r.LotteryNumber]; ok {
			registrants, local := s.Registrants, s.LocalRegistrants
			rows[i].Registrants = &registrants
			rows[i].LocalRegistrants = &local
		}
	}
	return rows
}

// FilterByCity returns the records whose CityCode equals code, in order.
// An empty code returns records unchanged.
func FilterByCity(records []Record, code string) []Record {
	if code == "" {
		return records
	}
	filtered := make([]Record, 0)
	for _, r := range records {
		if r.CityCode == code {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
