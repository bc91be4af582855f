package season

// Season is one edition of a league, e.g. "2024/2025".
type Season struct {
	ID        int64
	Name      string
	LeagueID  int64
	IsCurrent bool
	Provider  string
}

// Filter narrows season reads; empty slices mean no restriction.
type Filter struct {
	LeagueIDs []int64
	SeasonIDs []int64
}
