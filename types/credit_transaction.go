package types

import "github.com/neos-go/neos-go/id"

// CreditTransaction details a transfer of credits (KFC/NCR), found in
// CreditTransfer messages. Comment and Anonymous are sent as null at
// times; they then keep their zero values.
type CreditTransaction struct {
	Token           string          `json:"token"`
	FromUserId      *id.User        `json:"fromUserId,omitempty"`
	Amount          float64         `json:"amount"`
	TransactionType TransactionType `json:"transactionType"`
	Comment         string          `json:"comment"`
	Anonymous       bool            `json:"anonymous"`
}
