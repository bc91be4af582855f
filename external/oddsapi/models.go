package oddsapi

import "time"

// Event is one historical event as the provider reported it at a snapshot.
type Event struct {
	ID           string
	SportKey     string
	CommenceTime time.Time
	HomeTeam     string
	AwayTeam     string
}

// Snapshot carries a historical payload together with the snapshot the
// provider actually resolved and its neighbours on the timeline.
type Snapshot[T any] struct {
	Timestamp         time.Time
	PreviousTimestamp *time.Time
	NextTimestamp     *time.Time
	Data              T
}

// Quote is a 1X2 price triple taken from one bookmaker at one snapshot.
// Outcomes the bookmaker did not price stay nil.
type Quote struct {
	Home *float64
	Draw *float64
	Away *float64
}

func (q Quote) Empty() bool {
	return q.Home == nil && q.Draw == nil && q.Away == nil
}

type historicalEnvelope struct {
	Timestamp         string `json:"timestamp"`
	PreviousTimestamp string `json:"previous_timestamp"`
	NextTimestamp     string `json:"next_timestamp"`
}

type historicalEventsEnvelope struct {
	historicalEnvelope
	Data []eventItem `json:"data"`
}

type historicalOddsEnvelope struct {
	historicalEnvelope
	Data eventOddsItem `json:"data"`
}

type eventItem struct {
	ID           string `json:"id"`
	SportKey     string `json:"sport_key"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
}

type eventOddsItem struct {
	eventItem
	Bookmakers []bookmakerItem `json:"bookmakers"`
}

type bookmakerItem struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []marketItem `json:"markets"`
}

type marketItem struct {
	Key      string        `json:"key"`
	Outcomes []outcomeItem `json:"outcomes"`
}

type outcomeItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
