package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-legal/docaudit/internal/model"
)

func TestTextSource_Pages(t *testing.T) {
	src := NewTextSource([]string{"first page", "second page"})

	pages, err := src.Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 0, pages[0].Index)
	assert.Equal(t, "first page", pages[0].RawText)
	assert.Equal(t, 1, pages[1].Index)
}

func TestTextSource_Empty(t *testing.T) {
	_, err := NewTextSource(nil).Pages(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
