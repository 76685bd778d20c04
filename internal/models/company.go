package models

import (
	"time"

	"github.com/google/uuid"
)

// BankruptcyStatus is the label of a company: 0 = solvent, 1 = bankrupt
type BankruptcyStatus int

const (
	StatusSolvent  BankruptcyStatus = 0
	StatusBankrupt BankruptcyStatus = 1
)

// Company represents one row of the cleaned dataset
type Company struct {
	CompanyID        int64            `json:"company_id" db:"company_id"`
	BankruptcyStatus BankruptcyStatus `json:"bankruptcy_status" db:"bankruptcy_status"`
	Year             int              `json:"year" db:"year"`
	Industry         string           `json:"industry" db:"industry"`
}

// FinancialRatio is a single named ratio value belonging to a company
type FinancialRatio struct {
	RatioID    int64   `json:"ratio_id" db:"ratio_id"`
	CompanyID  int64   `json:"company_id" db:"company_id"`
	RatioName  string  `json:"ratio_name" db:"ratio_name"`
	RatioValue float64 `json:"ratio_value" db:"ratio_value"`
}

// CompanyDetail combines a company with all of its ratios
type CompanyDetail struct {
	Company Company          `json:"company"`
	Ratios  []FinancialRatio `json:"ratios"`
}

// GroupStats holds descriptive statistics of one ratio within one bankruptcy group.
// Every field is 0.0 when the group has no rows for the ratio.
type GroupStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// RatioComparison compares one ratio between bankrupt and solvent companies
type RatioComparison struct {
	Bankrupt GroupStats `json:"bankrupt"`
	Solvent  GroupStats `json:"solvent"`
}

// LoadResult summarizes a completed reload
type LoadResult struct {
	BatchID   uuid.UUID     `json:"batch_id"`
	Companies int           `json:"companies"`
	Ratios    int           `json:"ratios"`
	Duration  time.Duration `json:"duration"`
}
