package services

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/guestgallery/internal/common"
)

// Limits on the optional text attached to a photo, in characters.
const (
	MaxCaptionLength  = 500
	MaxLocationLength = 100
)

// Submission is a candidate photo upload as received from a guest.
type Submission struct {
	Body      io.Reader
	Filename  string
	MediaType string
	Size      int64
	Caption   string
	Location  string
}

// PhotoText is the normalised caption and location of an accepted
// submission; blank values are nil.
type PhotoText struct {
	Caption  *string
	Location *string
}

// ValidateSubmission checks a submission before anything is written.
// Rules are applied in order and the first failure is returned as a
// *common.ValidationError.
func ValidateSubmission(sub *Submission) (PhotoText, error) {
	if sub == nil || sub.Body == nil || sub.Size <= 0 {
		return PhotoText{}, common.NewValidationError("no file provided")
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(sub.MediaType)), "image/") {
		return PhotoText{}, common.NewValidationError("file must be an image")
	}
	if sub.Size > common.MaxUploadSize {
		return PhotoText{}, common.NewValidationError("file size must be less than 5MB")
	}

	caption, err := optionalText("caption", sub.Caption, MaxCaptionLength)
	if err != nil {
		return PhotoText{}, err
	}
	location, err := optionalText("location", sub.Location, MaxLocationLength)
	if err != nil {
		return PhotoText{}, err
	}

	return PhotoText{Caption: caption, Location: location}, nil
}

func optionalText(field, value string, limit int) (*string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(v) > limit {
		return nil, common.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return &v, nil
}
