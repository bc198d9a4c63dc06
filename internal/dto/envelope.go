package dto

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

// Upload notifications arrive in one of a fixed set of shapes: the bare
// storage event, or the storage event wrapped inside a topic forwarding
// envelope (one level deep). DecodeUploadEnvelope tries the shapes in order
// and returns the notifications of the first structural match.
//
// A recognized event whose records are all irrelevant (wrong source, not a
// create) decodes to an empty slice; an unrecognizable body returns
// errs.ErrEnvelopeNotRecognized.

type storageEvent struct {
	Records []storageEventRecord `json:"Records"`
}

type storageEventRecord struct {
	EventSource string `json:"eventSource"`
	EventName   string `json:"eventName"`
	S3          struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

type topicEnvelope struct {
	Message string `json:"Message"`
}

func DecodeUploadEnvelope(body []byte) ([]UploadNotification, error) {
	// 1. bare storage event
	notifications, ok, err := decodeStorageEvent(body)
	if err != nil {
		return nil, err
	}
	if ok {
		return notifications, nil
	}

	// 2. topic-wrapped: the forwarded payload is a JSON string one level down
	var envelope topicEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		notifications, ok, err = decodeStorageEvent([]byte(envelope.Message))
		if err != nil {
			return nil, err
		}
		if ok {
			return notifications, nil
		}
	}

	return nil, errs.ErrEnvelopeNotRecognized
}

func decodeStorageEvent(body []byte) ([]UploadNotification, bool, error) {
	var event storageEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Records == nil {
		return nil, false, nil
	}

	notifications := make([]UploadNotification, 0, len(event.Records))

	for _, record := range event.Records {
		if record.EventSource != "aws:s3" || !strings.HasPrefix(record.EventName, "ObjectCreated") {
			continue
		}

		key, err := NormalizeKey(record.S3.Object.Key)
		if err != nil {
			return nil, true, fmt.Errorf("dto - decodeStorageEvent - NormalizeKey: %w", err)
		}

		notifications = append(notifications, UploadNotification{
			Bucket: record.S3.Bucket.Name,
			Key:    key,
		})
	}

	return notifications, true, nil
}

// NormalizeKey decodes a raw object key: '+' as space, then percent-decoding.
// Keys may contain spaces and non-ASCII characters.
func NormalizeKey(raw string) (string, error) {
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("dto - NormalizeKey - url.QueryUnescape: %w", err)
	}

	return key, nil
}
