package entity

import "time"

// ImageRecord is the stored record for one uploaded object, keyed by its
// object key. ID, UploadTime and Bucket are set once at creation.
// Caption/Date/Name are owned by the metadata merger; Status/Reason/ReviewDate
// are owned by the review merger and only ever change as a triple.
type ImageRecord struct {
	ID         string    `json:"id"`
	UploadTime time.Time `json:"upload_time"`
	Bucket     string    `json:"bucket"`

	Caption *string `json:"caption,omitempty"`
	Date    *string `json:"date,omitempty"`
	Name    *string `json:"name,omitempty"`

	Status     *ReviewStatus `json:"status,omitempty"`
	Reason     *string       `json:"reason,omitempty"`
	ReviewDate *string       `json:"review_date,omitempty"`
}
