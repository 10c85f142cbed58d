// Package model defines the data shared by the quote service packages.
package model

import "time"

// Job is one persisted quote request together with its computed price and
// the pricing configuration in effect when it was quoted. Jobs are never
// updated once stored.
//
// JSON names match the columns of the jobs table so a record reads the same
// from the database, the local fallback store and the API.
type Job struct {
	ID               string     `json:"id,omitempty"`
	PartType         string     `json:"part_type"`
	Material         string     `json:"material"`
	Quantity         int        `json:"quantity"`
	Complexity       Complexity `json:"complexity"`
	Deadline         *Date      `json:"deadline"`
	Quote            Money      `json:"quote"`
	RushFeeEnabled   bool       `json:"rush_fee_enabled"`
	RushFeeAmount    Money      `json:"rush_fee_amount"`
	MarginPercentage int        `json:"margin_percentage"`
	CreatedAt        time.Time  `json:"created_at"`
}
