package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/stretchr/testify/require"
)

func TestCodeExtractor(t *testing.T) {
	err := apperr.New(apperr.ErrNotHolder, "book is held by someone else")
	wrapped := fmt.Errorf("return: %w", err)

	require.Equal(t, apperr.ErrNotHolder, apperr.Code(wrapped))
	require.Equal(t, "book is held by someone else", apperr.Detail(wrapped))
	require.True(t, apperr.Is(wrapped, apperr.ErrNotHolder))
	require.Equal(t, apperr.ErrCode(""), apperr.Code(errors.New("plain")))
	require.Equal(t, "", apperr.Detail(errors.New("plain")))
}

func TestError_Message(t *testing.T) {
	require.Equal(t, "NOT_FOUND", apperr.New(apperr.ErrNotFound, "").Error())
	require.Equal(t, "BAD_INPUT: rating 9 out of range", apperr.Newf(apperr.ErrBadInput, "rating %d out of range", 9).Error())
}
