package models

import (
	"time"
)

// Contribution is one recorded presale payment. Rows are only ever inserted.
type Contribution struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	WalletAddress string    `gorm:"index;not null" json:"walletAddress"`
	XRPAmount     float64   `gorm:"column:xrp_amount;not null" json:"xrpAmount"`
	TransactionID string    `gorm:"index" json:"transactionId,omitempty"`
	Email         string    `json:"email,omitempty"`
	Timestamp     time.Time `gorm:"index;not null" json:"timestamp"`
}
