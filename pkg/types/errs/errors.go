package errs

import "errors"

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrObjectNotFound        = errors.New("object not found")
	ErrEnvelopeNotRecognized = errors.New("envelope not recognized")
	ErrMessageInvalid        = errors.New("message invalid")
)
