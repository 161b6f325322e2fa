package scoring

// MatchFormat defines the overall structure of a match.
type MatchFormat string

const (
	// FormatBestOfThree is first to 2 sets, up to 3.
	FormatBestOfThree MatchFormat = "best_of_3"
	// FormatBestOfFive is first to 3 sets, up to 5.
	FormatBestOfFive MatchFormat = "best_of_5"
	// FormatProSet is a single extended set.
	FormatProSet MatchFormat = "pro_set"
)

// Side identifies one of the two players in a match.
type Side string

const (
	SideP1   Side = "p1"
	SideP2   Side = "p2"
	SideNone Side = ""
)

// TiebreakScore holds the point score of a tiebreak game. Only present on a
// set that finished 7-6 or 6-7.
type TiebreakScore struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// SetScore holds the game count of one set for each player.
type SetScore struct {
	P1       int            `json:"p1"`
	P2       int            `json:"p2"`
	Tiebreak *TiebreakScore `json:"tiebreak,omitempty"`
}

// Outcome is the derived result of a match score. It is recomputed from the
// sets and the format, never stored.
type Outcome struct {
	Winner   Side `json:"winner"`
	Complete bool `json:"complete"`
}
