package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrillDownEnterDescends(t *testing.T) {
	st := NewDrillDownState()
	assert.Equal(t, LevelCategory, st.Level)

	assert.True(t, st.Enter("BIOCHEMISTRY"))
	assert.Equal(t, LevelSubcategory, st.Level)
	assert.Equal(t, "BIOCHEMISTRY", st.Category)

	assert.True(t, st.Enter("GLUCOSE"))
	assert.Equal(t, LevelSubSubcategory, st.Level)
	assert.Equal(t, "GLUCOSE", st.Subcategory)

	// deepest level, nothing to enter
	assert.False(t, st.Enter("IGNORED"))
	assert.Equal(t, LevelSubSubcategory, st.Level)
}

func TestDrillDownBackClearsDeepestKey(t *testing.T) {
	st := NewDrillDownState()
	st.Enter("BIOCHEMISTRY")
	st.Enter("GLUCOSE")

	st.Back()
	assert.Equal(t, LevelSubcategory, st.Level)
	assert.Equal(t, "BIOCHEMISTRY", st.Category)
	assert.Empty(t, st.Subcategory)

	st.Back()
	assert.Equal(t, LevelCategory, st.Level)
	assert.Empty(t, st.Category)

	// already at the top
	st.Back()
	assert.Equal(t, LevelCategory, st.Level)
}

func TestDrillDownHomeResetsFromAnyDepth(t *testing.T) {
	st := NewDrillDownState()
	st.Enter("BIOCHEMISTRY")
	st.Enter("GLUCOSE")

	st.Home()
	assert.Equal(t, LevelCategory, st.Level)
	assert.Empty(t, st.Category)
	assert.Empty(t, st.Subcategory)
}

func TestBreadcrumbTracksPath(t *testing.T) {
	st := NewDrillDownState()
	assert.Equal(t, "Categories", st.Breadcrumb())

	st.Enter("BIOCHEMISTRY")
	assert.Equal(t, "Categories > BIOCHEMISTRY", st.Breadcrumb())

	st.Enter("GLUCOSE")
	assert.Equal(t, "Categories > BIOCHEMISTRY > GLUCOSE", st.Breadcrumb())
}
