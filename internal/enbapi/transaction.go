package enbapi

import "time"

const (
	TxCredit = "credit"
	TxDebit  = "debit"
)

// Transaction is a Structure designed to keep the data of balance
// adjustments. Append-only ledger, carries a before/after snapshot.
type Transaction struct {
	CreatedAt     time.Time `json:"created_at"`
	Txid          uint      `json:"txid" gorm:"primaryKey;autoIncrement:true"` // Inner transaction ID
	WalletAddress string    `json:"wallet_address" gorm:"index;not null"`
	Type          string    `json:"type"` // Type: "credit", "debit"
	Amount        float64   `json:"amount"`
	BalanceBefore float64   `json:"balance_before"`
	BalanceAfter  float64   `json:"balance_after"`
	TxHash        string    `json:"tx_hash"` // On-chain hash kept for audit, empty for plain adjustments
	Message       string    `json:"message"`
}
