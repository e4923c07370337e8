package models

// PollResult summarizes a single poll cycle.
type PollResult struct {
	Enabled             bool   `json:"enabled"`
	Sent                int    `json:"sent"`
	LiveFixtures        int    `json:"liveFixtures"`
	TrackedLiveFixtures int    `json:"trackedLiveFixtures"`
	ScopedLiveFixtures  int    `json:"scopedLiveFixtures"`
	Error               string `json:"error,omitempty"`
}
