package provision

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{fmt.Errorf("%w: HTTP 500", ErrNetwork), KindNetwork},
		{fmt.Errorf("%w: bad", ErrChecksum), KindNetwork},
		{fmt.Errorf("%w: gzip", ErrExtract), KindExtract},
		{fmt.Errorf("%w: exit 1", ErrExit), KindExit},
		{fmt.Errorf("%w: no installer", ErrConfig), KindConfig},
		{errors.New("permission denied"), KindExit},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			se := classify("java", tt.err)
			assert.Equal(t, tt.kind, se.Kind)
			assert.True(t, errors.Is(se, tt.err))
			assert.True(t, errors.Is(se, tt.kind.sentinel()))
		})
	}
}

func TestClassify_KeepsStepError(t *testing.T) {
	orig := &StepError{Step: "node", Kind: KindConfig, Err: errors.New("boom")}
	wrapped := fmt.Errorf("outer: %w", orig)

	assert.Same(t, orig, classify("other", wrapped))
}

func TestStepError_Error(t *testing.T) {
	err := &StepError{Step: "gradle", Kind: KindExtract, Err: errors.New("unexpected EOF")}
	assert.Equal(t, `step "gradle" failed (extract): unexpected EOF`, err.Error())
	assert.True(t, errors.Is(err, ErrExtract))
	assert.False(t, errors.Is(err, ErrNetwork))
}
