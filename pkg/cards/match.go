package cards

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO form fbref prints in the Date column
const DateLayout = "2006-01-02"

// Compile-time check to ensure MatchRow implements Persistable interface
var _ Persistable = (*MatchRow)(nil)

// MatchRow is one fixture from a tracked team's match log
type MatchRow struct {
	Date        string `json:"date" column:"date" dbtype:"TEXT NOT NULL" primary:"true"`
	Team        string `json:"team" column:"team" dbtype:"TEXT NOT NULL" index:"true"`
	Competition string `json:"comp" column:"comp" dbtype:"TEXT" index:"true"`

	// Passthrough columns from the match log
	Time         string   `json:"time,omitempty" column:"time" dbtype:"TEXT"`
	Round        string   `json:"round,omitempty" column:"round" dbtype:"TEXT"`
	Day          string   `json:"day,omitempty" column:"day" dbtype:"TEXT"`
	Venue        string   `json:"venue,omitempty" column:"venue" dbtype:"TEXT"`
	Opponent     string   `json:"opponent,omitempty" column:"opponent" dbtype:"TEXT"`
	Referee      string   `json:"referee,omitempty" column:"referee" dbtype:"TEXT" index:"true"`
	GoalsFor     *int     `json:"gf,omitempty" column:"gf" dbtype:"INTEGER"`
	GoalsAgainst *int     `json:"ga,omitempty" column:"ga" dbtype:"INTEGER"`
	XG           *float64 `json:"xg,omitempty" column:"xg" dbtype:"REAL"`
	XGA          *float64 `json:"xga,omitempty" column:"xga" dbtype:"REAL"`
	Possession   *float64 `json:"poss,omitempty" column:"poss" dbtype:"REAL"`
	Extra        Extra    `json:"extra,omitempty" column:"extra" dbtype:"TEXT"`

	// Detail page
	MatchID  string          `json:"matchId,omitempty" column:"match_id" dbtype:"TEXT"`
	Cautions *CautionBuckets `json:"cautions,omitempty" column:"cautions" dbtype:"TEXT"`

	// Derived by Enrich
	HomeFirstCount      int `json:"homeYellowFirstCount" column:"home_yellow_first_count" dbtype:"INTEGER DEFAULT 0"`
	HomeSecondCount     int `json:"homeYellowSecondCount" column:"home_yellow_second_count" dbtype:"INTEGER DEFAULT 0"`
	OpponentFirstCount  int `json:"opponentYellowFirstCount" column:"opponent_yellow_first_count" dbtype:"INTEGER DEFAULT 0"`
	OpponentSecondCount int `json:"opponentYellowSecondCount" column:"opponent_yellow_second_count" dbtype:"INTEGER DEFAULT 0"`
	Total               int `json:"all" column:"total" dbtype:"INTEGER DEFAULT 0"`
	FirstHalfTotal      int `json:"firstHalf" column:"first_half" dbtype:"INTEGER DEFAULT 0"`
	SecondHalfTotal     int `json:"secondHalf" column:"second_half" dbtype:"INTEGER DEFAULT 0"`

	// link to the detail page, read from the date cell of the match log
	detailHref string
}

// GetTableName returns the table name for match rows
func (m *MatchRow) GetTableName() string {
	return "matches"
}

// BeforeSave rejects rows that would break the unique date invariant
func (m *MatchRow) BeforeSave() error {
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("match row has invalid date %q: %w", m.Date, err)
	}
	return nil
}

// Complete reports whether the row survives the enrichment filter
func (m *MatchRow) Complete() bool {
	return m.GoalsFor != nil && m.Cautions != nil && m.Cautions.HomeFirst != nil
}

// HomeCautions is the tracked team's own caution count for the match
func (m *MatchRow) HomeCautions() int {
	return m.HomeFirstCount + m.HomeSecondCount
}

/////////////////////////////////////////////////////////////////////////
////// Caution buckets
/////////////////////////////////////////////////////////////////////////

// CautionBuckets holds the players cautioned per side and half.
// "Home" is always the tracked team regardless of venue.
type CautionBuckets struct {
	HomeFirst      []string `json:"home_yellow_first"`
	HomeSecond     []string `json:"home_yellow_second"`
	OpponentFirst  []string `json:"opponent_yellow_first"`
	OpponentSecond []string `json:"opponent_yellow_second"`
}

// NewCautionBuckets returns buckets with every list present but empty
func NewCautionBuckets() *CautionBuckets {
	return &CautionBuckets{
		HomeFirst:      []string{},
		HomeSecond:     []string{},
		OpponentFirst:  []string{},
		OpponentSecond: []string{},
	}
}

// Value stores the buckets as a JSON document, nil buckets as NULL
func (c *CautionBuckets) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode caution buckets: %w", err)
	}
	return string(b), nil
}

// Scan restores buckets written by Value
func (c *CautionBuckets) Scan(src any) error {
	raw, err := textFromColumn(src)
	if err != nil {
		return err
	}
	var decoded CautionBuckets
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("failed to decode caution buckets: %w", err)
	}
	*c = decoded
	c.fill()
	return nil
}

// fill swaps JSON nulls for empty lists so a decoded bucket never looks incomplete
func (c *CautionBuckets) fill() {
	for _, l := range []*[]string{&c.HomeFirst, &c.HomeSecond, &c.OpponentFirst, &c.OpponentSecond} {
		if *l == nil {
			*l = []string{}
		}
	}
}

/////////////////////////////////////////////////////////////////////////
////// Passthrough columns
/////////////////////////////////////////////////////////////////////////

// Extra keeps match log columns the model has no field for
type Extra map[string]string

// Value stores Extra as a JSON object
func (e Extra) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(e))
	if err != nil {
		return nil, fmt.Errorf("failed to encode extra columns: %w", err)
	}
	return string(b), nil
}

// Scan restores Extra, NULL gives an empty map
func (e *Extra) Scan(src any) error {
	if src == nil {
		*e = nil
		return nil
	}
	raw, err := textFromColumn(src)
	if err != nil {
		return err
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("failed to decode extra columns: %w", err)
	}
	*e = m
	return nil
}

func textFromColumn(src any) ([]byte, error) {
	switch v := src.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
