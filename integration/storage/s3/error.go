package s3

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/catb00mer/fluffer/core/static"
)

var (
	ErrInvalidConfig = errors.New("invalid s3 configuration")
	ErrLoadConfig    = errors.New("failed to load aws config")
)

// classifyError converts S3 errors to static source errors.
func classifyError(err error, key string) error {
	if err == nil {
		return nil
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", static.ErrNotFound, key)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket", "AccessDenied":
			return fmt.Errorf("%w: %s: %w", static.ErrNotFound, key, err)
		}
	}

	return fmt.Errorf("%w: %s: %w", static.ErrRead, key, err)
}
