package models

type FootballResponse[T any] struct {
	Errors   any `json:"errors"`
	Results  int `json:"results"`
	Response []T `json:"response"`
}

// UpstreamErrors returns the raw "errors" field. It is an empty array on success.
func (r *FootballResponse[T]) UpstreamErrors() any {
	return r.Errors
}

type LiveFixture struct {
	Fixture struct {
		ID     int64 `json:"id"`
		Status struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"league"`
	Teams struct {
		Home FootballTeam `json:"home"`
		Away FootballTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type FootballTeam struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

type FootballPerson struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

// FixtureEvent is one raw entry of the fixture event feed. Every field may be absent.
type FixtureEvent struct {
	Time struct {
		Elapsed *int `json:"elapsed"`
		Extra   *int `json:"extra"`
	} `json:"time"`
	Team     FootballTeam   `json:"team"`
	Player   FootballPerson `json:"player"`
	Assist   FootballPerson `json:"assist"`
	Type     string         `json:"type"`
	Detail   string         `json:"detail"`
	Comments *string        `json:"comments"`
}
