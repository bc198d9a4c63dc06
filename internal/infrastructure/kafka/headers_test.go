package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestDeliveryAttempts(t *testing.T) {
	for name, tc := range map[string]struct {
		headers []kafka.Header
		want    int
	}{
		"absent header is first delivery": {nil, 1},
		"counted redelivery": {
			[]kafka.Header{{Key: DeliveryAttemptsHeader, Value: []byte("3")}},
			3,
		},
		"garbage falls back to 1": {
			[]kafka.Header{{Key: DeliveryAttemptsHeader, Value: []byte("lots")}},
			1,
		},
		"zero falls back to 1": {
			[]kafka.Header{{Key: DeliveryAttemptsHeader, Value: []byte("0")}},
			1,
		},
	} {
		event := kafka.Message{Headers: tc.headers}
		if got := DeliveryAttempts(event); got != tc.want {
			t.Fatalf("%s: DeliveryAttempts = %d, want %d", name, got, tc.want)
		}
	}
}

func TestAttribute(t *testing.T) {
	event := kafka.Message{Headers: []kafka.Header{
		{Key: "metadata_type", Value: []byte("Caption")},
	}}

	if got := Attribute(event, "metadata_type"); got != "Caption" {
		t.Fatalf("Attribute = %q, want %q", got, "Caption")
	}
	if got := Attribute(event, "message_type"); got != "" {
		t.Fatalf("absent attribute must be empty, got %q", got)
	}
}
