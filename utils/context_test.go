package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRequestIDFromCtxWithoutID(t *testing.T) {
	assert.Empty(t, GetRequestIDFromCtx(context.Background()))
}

func TestCreateCtxWithRqID(t *testing.T) {
	ctx := CreateCtxWithRqID(context.Background())

	assert.NotEmpty(t, GetRequestIDFromCtx(ctx))
}

func TestCtxWithRqIDPropagatesGivenID(t *testing.T) {
	ctx := CtxWithRqID(context.Background(), "upstream-id")

	assert.Equal(t, "upstream-id", GetRequestIDFromCtx(ctx))
}

func TestCtxWithRqIDGeneratesWhenEmpty(t *testing.T) {
	ctx := CtxWithRqID(context.Background(), "")

	assert.NotEmpty(t, GetRequestIDFromCtx(ctx))
}
