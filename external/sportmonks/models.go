package sportmonks

import "time"

// League is a competition as the provider reports it.
type League struct {
	ID   int64
	Name string
}

// Season is one edition of a league.
type Season struct {
	ID        int64
	Name      string
	LeagueID  int64
	IsCurrent bool
}

// ScheduleFixture is one fixture from a season schedule. Goals are nil until
// the provider publishes a current score.
type ScheduleFixture struct {
	ID         int64
	StartingAt time.Time
	HomeTeamID int64
	AwayTeamID int64
	HomeGoals  *int
	AwayGoals  *int
}

// TeamInfo is participant metadata collected while walking a schedule.
type TeamInfo struct {
	ID        int64
	Name      string
	ShortCode string
}

// LineupEntry is one player's row in a fixture lineup, with the provider's
// post-match rating when published.
type LineupEntry struct {
	PlayerID          int64
	TeamID            int64
	PlayerName        string
	PositionID        *int64
	JerseyNumber      *int
	FormationPosition *int
	Rating            *float64
}

// OddsQuote is the provider's pre-match 1X2 quote for one bookmaker. Any
// outcome may be absent when the bookmaker did not price it.
type OddsQuote struct {
	Home      *float64
	Draw      *float64
	Away      *float64
	UpdatedAt *time.Time
}

func (q OddsQuote) Empty() bool {
	return q.Home == nil && q.Draw == nil && q.Away == nil
}

type paginationInfo struct {
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	CurrentPage int  `json:"current_page"`
	HasMore     bool `json:"has_more"`
}

type leagueEnvelope struct {
	Data leagueItem `json:"data"`
}

type leagueItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type seasonsEnvelope struct {
	Data       []seasonItem   `json:"data"`
	Pagination paginationInfo `json:"pagination"`
}

type seasonItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LeagueID  int64  `json:"league_id"`
	IsCurrent bool   `json:"is_current"`
}

type scheduleEnvelope struct {
	Data []scheduleStage `json:"data"`
}

type scheduleStage struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Rounds []scheduleRound `json:"rounds"`
}

type scheduleRound struct {
	ID       int64                 `json:"id"`
	Name     string                `json:"name"`
	Fixtures []scheduleFixtureItem `json:"fixtures"`
}

type scheduleFixtureItem struct {
	ID           int64                `json:"id"`
	StartingAt   string               `json:"starting_at"`
	Participants []participantItem    `json:"participants"`
	Scores       []fixtureScoreItem   `json:"scores"`
	State        *fixtureStateWrapper `json:"state"`
}

type fixtureStateWrapper struct {
	ID int64 `json:"id"`
}

type participantItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	ShortCode string          `json:"short_code"`
	Meta      participantMeta `json:"meta"`
}

type participantMeta struct {
	Location string `json:"location"`
}

type fixtureScoreItem struct {
	ParticipantID int64        `json:"participant_id"`
	Description   string       `json:"description"`
	Score         scoreDetails `json:"score"`
}

type scoreDetails struct {
	Goals       *int   `json:"goals"`
	Participant string `json:"participant"`
}

type fixtureEnvelope struct {
	Data fixtureDetails `json:"data"`
}

type fixtureDetails struct {
	ID      int64            `json:"id"`
	Lineups []lineupItem     `json:"lineups"`
	Odds    []preMatchOddRow `json:"odds"`
}

type lineupItem struct {
	PlayerID          int64              `json:"player_id"`
	TeamID            int64              `json:"team_id"`
	PlayerName        string             `json:"player_name"`
	PositionID        *int64             `json:"position_id"`
	JerseyNumber      *int               `json:"jersey_number"`
	FormationPosition *int               `json:"formation_position"`
	Details           []lineupDetailItem `json:"details"`
}

type lineupDetailItem struct {
	TypeID int64            `json:"type_id"`
	Type   *detailType      `json:"type"`
	Data   lineupDetailData `json:"data"`
}

type detailType struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	DeveloperName string `json:"developer_name"`
}

func (d lineupDetailItem) typeName() string {
	if d.Type == nil {
		return ""
	}
	if d.Type.DeveloperName != "" {
		return d.Type.DeveloperName
	}
	if d.Type.Code != "" {
		return d.Type.Code
	}
	return d.Type.Name
}

type lineupDetailData struct {
	Value any `json:"value"`
}

type preMatchOddRow struct {
	MarketID              int64  `json:"market_id"`
	BookmakerID           int64  `json:"bookmaker_id"`
	Label                 string `json:"label"`
	Value                 string `json:"value"`
	LatestBookmakerUpdate string `json:"latest_bookmaker_update"`
	CreatedAt             string `json:"created_at"`
}
