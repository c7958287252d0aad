package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseRecordedMessageRoundTrip(t *testing.T) {
	msg := NewExpenseRecordedMessage(42, "2024-01-01", "Food", 4550)
	body, err := msg.ToJSON()
	require.NoError(t, err)

	kind, err := MessageKind(body)
	require.NoError(t, err)
	assert.Equal(t, KindExpenseRecorded, kind)

	decoded, err := ExpenseRecordedMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, int64(42), decoded.ID)
	assert.Equal(t, "Food", decoded.Category)
	assert.Equal(t, int64(4550), decoded.AmountCents)
	assert.Equal(t, "2024-01-01", decoded.Date)
}

func TestImpulseAlertMessageRoundTrip(t *testing.T) {
	msg := NewImpulseAlertMessage("2024-01-01")
	body, err := msg.ToJSON()
	require.NoError(t, err)

	kind, err := MessageKind(body)
	require.NoError(t, err)
	assert.Equal(t, KindImpulseAlert, kind)

	decoded, err := ImpulseAlertMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", decoded.Date)
}

func TestMessageKindInvalid(t *testing.T) {
	_, err := MessageKind([]byte("{"))
	assert.Error(t, err)

	_, err = MessageKind([]byte(`{"date":"2024-01-01"}`))
	assert.Error(t, err, "kind field is required")
}

func TestExpenseRecordedMessageFromJSONInvalid(t *testing.T) {
	_, err := ExpenseRecordedMessageFromJSON([]byte("{"))
	assert.Error(t, err)
}
