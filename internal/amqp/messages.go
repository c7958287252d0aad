package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds; both kinds travel on the same queue, the kind field
// tells consumers which decoder to use.
const (
	KindExpenseRecorded = "expense_recorded"
	KindImpulseAlert    = "impulse_alert"
)

// ExpenseRecordedMessage announces a committed ledger entry. Consumers
// fetch the full row from the store if they need more than the summary.
type ExpenseRecordedMessage struct {
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// ImpulseAlertMessage announces that a calendar date crossed the impulse
// threshold.
type ImpulseAlertMessage struct {
	Kind      string    `json:"kind"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(id int64, date, category string, amountCents int64) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		Kind:        KindExpenseRecorded,
		ID:          id,
		Date:        date,
		Category:    category,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

func NewImpulseAlertMessage(date string) *ImpulseAlertMessage {
	return &ImpulseAlertMessage{Kind: KindImpulseAlert, Date: date, Timestamp: time.Now()}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }
func (m *ImpulseAlertMessage) ToJSON() ([]byte, error)    { return json.Marshal(m) }

// MessageKind peeks at the kind field without decoding the full payload.
func MessageKind(data []byte) (string, error) {
	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("decode message envelope: %w", err)
	}
	if envelope.Kind == "" {
		return "", fmt.Errorf("message has no kind field")
	}
	return envelope.Kind, nil
}

// ExpenseRecordedMessageFromJSON decodes a published expense event.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ImpulseAlertMessageFromJSON decodes a published impulse alert.
func ImpulseAlertMessageFromJSON(data []byte) (*ImpulseAlertMessage, error) {
	var msg ImpulseAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
