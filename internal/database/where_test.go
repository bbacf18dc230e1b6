package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilderEmpty(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.clause())
	assert.Empty(t, w.args)
}

func TestWhereBuilderJoinsPredicates(t *testing.T) {
	var w whereBuilder
	w.add("t.month >= ?", "2024-01")
	w.add("tw.town_name = ?", "BEDOK")
	assert.Equal(t, " WHERE t.month >= ? AND tw.town_name = ?", w.clause())
	assert.Equal(t, []interface{}{"2024-01", "BEDOK"}, w.args)
}

func TestWhereBuilderIn(t *testing.T) {
	var w whereBuilder
	w.in("tw.town_name", nil)
	assert.Equal(t, "", w.clause())

	w.in("tw.town_name", []string{"BEDOK", "YISHUN"})
	assert.Equal(t, " WHERE tw.town_name IN (?, ?)", w.clause())
	assert.Equal(t, []interface{}{"BEDOK", "YISHUN"}, w.args)
}
