package storage

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	apiErr := func(code string) error {
		return &smithy.GenericAPIError{Code: code, Message: code, Fault: smithy.FaultClient}
	}

	tests := []struct {
		name     string
		err      error
		fallback error
		want     error
	}{
		{"missing key", apiErr("NoSuchKey"), ErrReadFailed, ErrNotFound},
		{"head not found", apiErr("NotFound"), ErrReadFailed, ErrNotFound},
		{"missing bucket", apiErr("NoSuchBucket"), ErrHealthcheckFailed, ErrNotFound},
		{"access denied", apiErr("AccessDenied"), ErrUploadFailed, ErrAccessDenied},
		{"forbidden", apiErr("Forbidden"), ErrUploadFailed, ErrAccessDenied},
		{"typed missing key", &types.NoSuchKey{}, ErrReadFailed, ErrNotFound},
		{"unknown code", apiErr("SlowDown"), ErrDeleteFailed, ErrDeleteFailed},
		{"plain error", errors.New("connection reset"), ErrListFailed, ErrListFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := wrapS3Error(tt.err, tt.fallback)
			require.ErrorIs(t, wrapped, tt.want)
			require.Contains(t, wrapped.Error(), tt.err.Error())
		})
	}
}
