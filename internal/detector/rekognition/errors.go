package rekognition

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeThrottling         = "ThrottlingException"
)

var (
	// ErrInvalidCredentials indicates the AWS credential chain lacks
	// Rekognition access
	ErrInvalidCredentials = errors.New("invalid or insufficient AWS credentials")

	// ErrInvalidImage indicates Rekognition rejected the image payload
	ErrInvalidImage = errors.New("image rejected by rekognition")

	// ErrThrottled indicates the request was throttled by AWS
	ErrThrottled = errors.New("rekognition request throttled")
)

// mapAPIError converts known Rekognition API error codes into sentinel
// errors, leaving everything else wrapped as-is.
func mapAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case errCodeAccessDenied:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
	case errCodeInvalidImageFormat, errCodeImageTooLarge:
		return fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage())
	case errCodeThrottling:
		return fmt.Errorf("%w: %s", ErrThrottled, apiErr.ErrorMessage())
	}
	return err
}
