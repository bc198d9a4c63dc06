package dto

// Routing attributes understood by the topic subscriptions.
const (
	AttrMetadataType = "metadata_type"
	AttrMessageType  = "message_type"

	MessageTypeStatusUpdate = "status_update"
)

// UploadNotification is the innermost shape of an upload event: one created
// object. Key is already normalized (percent-decoded, '+' as space).
type UploadNotification struct {
	Bucket string
	Key    string
}

// MetadataUpdate is the body of a message carrying a single metadata field,
// routed by the metadata_type attribute.
type MetadataUpdate struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// StatusUpdate is the body of a moderation decision, routed by the
// message_type=status_update attribute.
type StatusUpdate struct {
	ID     string       `json:"id"`
	Date   string       `json:"date"`
	Update StatusChange `json:"update"`
}

type StatusChange struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
