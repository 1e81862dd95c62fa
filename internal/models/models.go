package models

import (
	"encoding/json"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Tiers lists every customer tier, most valuable first.
var Tiers = []Tier{TierPlatinum, TierGold, TierSilver, TierBronze}

// Weight is the tier's value weight used by impact scoring (bronze=1 .. platinum=4).
func (t Tier) Weight() int {
	switch t {
	case TierPlatinum:
		return 4
	case TierGold:
		return 3
	case TierSilver:
		return 2
	case TierBronze:
		return 1
	default:
		return 0
	}
}

type Customer struct {
	Email string `json:"email" bson:"email"`
	Tier  Tier   `json:"tier" bson:"tier"`
}

type Ticket struct {
	ID          string    `json:"id" bson:"_id" validate:"required"`
	Subject     string    `json:"subject" bson:"subject"`
	Description string    `json:"description" bson:"description"`
	Priority    Priority  `json:"priority" bson:"priority" validate:"required,oneof=low medium high urgent"`
	Status      string    `json:"status" bson:"status"`
	Category    string    `json:"category" bson:"category"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	Customer    *Customer `json:"customer,omitempty" bson:"customer,omitempty"`
}

// Text is the subject and description joined by a space.
func (t Ticket) Text() string {
	return t.Subject + " " + t.Description
}

// CustomerTier returns the linked customer's tier, or "" when unknown.
func (t Ticket) CustomerTier() Tier {
	if t.Customer == nil {
		return ""
	}
	return t.Customer.Tier
}

type AnalysisRun struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Status     string          `json:"status"`
	Summary    json.RawMessage `json:"summary"`
}
