package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	t.Parallel()

	ids, err := parseIDList("8, 501,72")
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 501, 72}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = parseIDList(" 8,,9 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 9}, ids)

	_, err = parseIDList("8,abc")
	require.Error(t, err)
}
