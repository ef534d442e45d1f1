package amqp

import (
	"strings"
	"testing"
)

func TestTransactionEventMessageWireFormat(t *testing.T) {
	msg := NewTransactionEventMessage(EventCreated, "tx-1", "user-1")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// The worker and any external consumers rely on these key names.
	for _, key := range []string{`"event"`, `"transactionId"`, `"userId"`, `"timestamp"`} {
		if !strings.Contains(string(body), key) {
			t.Errorf("expected key %s in %s", key, body)
		}
	}

	got, err := TransactionEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Event != EventCreated || got.TransactionID != "tx-1" || got.UserID != "user-1" {
		t.Fatalf("unexpected message: %+v", got)
	}

	if _, err := TransactionEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
