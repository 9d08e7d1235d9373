package sort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCastToSortDirection(t *testing.T) {
	assert.Equal(t, Ascending, CastToSortDirection("asc"))
	assert.Equal(t, Ascending, CastToSortDirection(" Ascending "))
	assert.Equal(t, Descending, CastToSortDirection("DESC"))
	assert.Equal(t, Undefined, CastToSortDirection("sideways"))
}

func TestLess(t *testing.T) {
	assert.True(t, Less(Ascending, "IND1", "IND4"))
	assert.True(t, Less(Undefined, "IND1", "IND4"))
	assert.False(t, Less(Descending, "IND1", "IND4"))
	assert.True(t, Less(Descending, "IND4", "IND1"))
}
