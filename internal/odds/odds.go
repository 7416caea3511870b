// Package odds estimates winning chances in a two-stage housing lottery.
//
// Local residents first draw against the local-only pool. If they lose they
// draw again against the general pool, which has lost the apartments handed
// out in the first stage and the registrants who won them. Disabled-access
// apartments are assumed to go to non-locals.
package odds

import "fmt"

// Model holds the inputs of one lottery.
type Model struct {
	Apartments         int
	LocalApartments    int
	DisabledApartments int
	TotalRegistrants   int
	LocalRegistrants   int
}

// Project1943 is the published example: project #1943.
var Project1943 = Model{
	Apartments:         102,
	LocalApartments:    51,
	DisabledApartments: 3,
	TotalRegistrants:   3526,
	LocalRegistrants:   438,
}

// Validate rejects models whose odds are undefined.
func (m Model) Validate() error {
	if m.LocalRegistrants <= 0 {
		return fmt.Errorf("local registrants must be positive, got %d", m.LocalRegistrants)
	}
	if m.TotalRegistrants-m.LocalApartments <= 0 {
		return fmt.Errorf("total registrants (%d) must exceed local apartments (%d)", m.TotalRegistrants, m.LocalApartments)
	}
	return nil
}

// LocalOdds returns a local resident's chance of winning, in percent.
func (m Model) LocalOdds() float64 {
	localRaffleOdds := float64(m.LocalApartments) / float64(m.LocalRegistrants)
	generalRaffleOddsForLocals := float64(m.Apartments-m.LocalApartments-m.DisabledApartments) /
		float64(m.TotalRegistrants-m.LocalApartments)
	accumulated := localRaffleOdds + (1-localRaffleOdds)*generalRaffleOddsForLocals
	return accumulated * 100
}

// GeneralOdds returns a non-local registrant's chance of winning, in percent,
// assuming every local apartment went to a local.
func (m Model) GeneralOdds() float64 {
	odds := float64(m.Apartments-m.DisabledApartments-m.LocalApartments) /
		float64(m.TotalRegistrants-m.LocalApartments)
	return odds * 100
}

// CalculateOddsForLocal returns LocalOdds of Project1943.
func CalculateOddsForLocal() float64 {
	return Project1943.LocalOdds()
}

// CalculateOddsForGeneral returns GeneralOdds of Project1943.
func CalculateOddsForGeneral() float64 {
	return Project1943.GeneralOdds()
}
