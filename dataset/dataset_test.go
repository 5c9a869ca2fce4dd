package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONLines(t *testing.T) {
	input := `{"x": 1, "colour": "red"}

{"x": null}
{}
`
	var records []Record
	var indexes []int
	err := ReadJSONLines(strings.NewReader(input), func(i int, r Record) (bool, error) {
		indexes = append(indexes, i)
		records = append(records, r)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, indexes)
	assert.Equal(t, Record{"x": 1.0, "colour": "red"}, records[0])
	assert.Equal(t, Record{"x": nil}, records[1])
	assert.Equal(t, Record{}, records[2])
}

func TestReadJSONLinesStops(t *testing.T) {
	var n int
	err := ReadJSONLines(strings.NewReader("{}\n{}\n{}\n"), func(int, Record) (bool, error) {
		n++
		return n < 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	boom := errors.New("boom")
	err = ReadJSONLines(strings.NewReader("{}\n"), func(int, Record) (bool, error) { return false, boom })
	assert.Equal(t, boom, err)
}

func TestReadJSONLinesBadLine(t *testing.T) {
	err := ReadJSONLines(strings.NewReader("{}\n[1, 2]\n"), func(int, Record) (bool, error) { return true, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
