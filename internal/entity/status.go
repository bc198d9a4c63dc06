package entity

type ReviewStatus string

const (
	StatusPass   ReviewStatus = "Pass"
	StatusReject ReviewStatus = "Reject"
)

func (s ReviewStatus) Valid() bool {
	return s == StatusPass || s == StatusReject
}
