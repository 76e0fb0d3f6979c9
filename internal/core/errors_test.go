package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: userId and message required", ErrValidation), CodeValidation},
		{fmt.Errorf("%w: LLM API key not configured on server", ErrConfiguration), CodeConfiguration},
		{fmt.Errorf("call: %w", fmt.Errorf("%w: status 401", ErrUpstream)), CodeUpstream},
		{fmt.Errorf("%w: query failed", ErrStoreUnavailable), CodeStoreUnavailable},
		{fmt.Errorf("%w: claude", ErrUnsupportedProvider), CodeUnsupportedProvider},
		{fmt.Errorf("llm: %w", context.DeadlineExceeded), CodeTimeout},
		{errors.New("boom"), CodeInternal},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
