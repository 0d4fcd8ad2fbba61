package amqp

import (
	"encoding/json"
	"time"
)

// PaymentSyncMessage is a lightweight message for mirroring a payment to the
// Google Sheets ledger. It carries only identifiers; the worker fetches the
// full payment from the database, so a stale message never overwrites newer
// data.
type PaymentSyncMessage struct {
	ID        int64     `json:"id"`
	LoanID    int64     `json:"loan_id"`
	Deleted   bool      `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPaymentSyncMessage(id, loanID int64, deleted bool) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		ID:        id,
		LoanID:    loanID,
		Deleted:   deleted,
		Timestamp: time.Now(),
	}
}

func (m *PaymentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentSyncMessageFromJSON(data []byte) (*PaymentSyncMessage, error) {
	var msg PaymentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
