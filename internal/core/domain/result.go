package domain

import "github.com/google/uuid"

type CandidateResult struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Party     string    `json:"party"`
	PhotoURL  string    `json:"photoUrl"`
	VoteCount int64     `json:"voteCount"`
	// Percentage is nil when the election has no verified votes.
	Percentage *float64 `json:"percentage"`
}

type ElectionResults struct {
	ElectionID uuid.UUID         `json:"electionId"`
	TotalVotes int64             `json:"totalVotes"`
	Candidates []CandidateResult `json:"candidates"`
}
