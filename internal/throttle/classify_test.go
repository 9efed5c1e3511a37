package throttle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill/internal/provider"
)

func TestClassifyProviderStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   Class
	}{
		{429, Retryable},
		{500, Retryable},
		{503, Retryable},
		{599, Retryable},
		{400, Permanent},
		{401, Permanent},
		{403, Permanent},
		{404, Permanent},
	}

	for _, tc := range cases {
		err := &provider.Error{Service: "content", StatusCode: tc.status, Message: "nope"}
		require.Equal(t, tc.want, Classify(err), "status %d", tc.status)
	}
}

func TestClassifyTypedStatusWithTransportMessage(t *testing.T) {
	// Any matching rule makes an error retryable; a non-retryable status
	// does not shadow a transport-level message.
	err := &provider.Error{Service: "research", StatusCode: 400, Message: "upstream network unreachable"}
	require.Equal(t, Retryable, Classify(err))

	err = &provider.Error{Service: "forum", StatusCode: 404, Message: "gateway timeout talking to search backend"}
	require.Equal(t, Retryable, Classify(err))

	err = &provider.Error{Service: "content", StatusCode: 400, Message: "unknown model"}
	require.Equal(t, Permanent, Classify(err))
}

func TestClassifyWrappedProviderError(t *testing.T) {
	err := fmt.Errorf("drafting article: %w", &provider.Error{Service: "content", StatusCode: 502, Message: "bad gateway"})
	require.Equal(t, Retryable, Classify(err))
}

func TestClassifyMessageMatching(t *testing.T) {
	require.Equal(t, Retryable, Classify(errors.New("Network unreachable")))
	require.Equal(t, Retryable, Classify(errors.New("request Timeout while reading body")))
	require.Equal(t, Retryable, Classify(errors.New("Rate Limit exceeded, slow down")))
	require.Equal(t, Permanent, Classify(errors.New("invalid API key")))
	require.Equal(t, Permanent, Classify(errors.New("malformed request body")))
}

func TestClassifyContextErrors(t *testing.T) {
	require.Equal(t, Retryable, Classify(context.DeadlineExceeded))
	require.Equal(t, Permanent, Classify(context.Canceled))
	require.Equal(t, Retryable, Classify(fmt.Errorf("unit: %w", context.DeadlineExceeded)))
}

func TestClassifyNil(t *testing.T) {
	require.Equal(t, Permanent, Classify(nil))
}
