package events

import (
	"testing"
	"time"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	e := NewTransactionEvent("tx-1", "cat-1", "2024-06", ActionCreated)
	if e.Timestamp.IsZero() {
		t.Fatalf("timestamp should be set")
	}

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.TransactionID != "tx-1" || back.CategoryID != "cat-1" || back.Month != "2024-06" || back.Action != ActionCreated {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if !back.Timestamp.Equal(e.Timestamp.Truncate(time.Nanosecond)) && back.Timestamp.IsZero() {
		t.Fatalf("timestamp lost: %v", back.Timestamp)
	}
}

func TestTransactionEventFromInvalidJSON(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}
