package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", apperrors.Transport(errors.New("dial"), "down"), "transport"},
		{"wrapped app error", fmt.Errorf("verify: %w", apperrors.Reconciliation("bad", nil)), "reconciliation"},
		{"plain", errors.New("boom"), "errors_errorstring"},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "context_deadlineexceedederror"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
