package controllers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_tracker/internal/models"
)

func TestCoordinateAcceptsNumbersAndStrings(t *testing.T) {
	var in struct {
		A coordinate `json:"a"`
		B coordinate `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": -1.2921, "b": " 36.82 "}`), &in))
	assert.Equal(t, coordinate(-1.2921), in.A)
	assert.Equal(t, coordinate(36.82), in.B)

	var bad struct {
		A coordinate `json:"a"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"a": "NaN"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &bad))
}

func TestEventTimeFormats(t *testing.T) {
	want := time.Date(2024, time.January, 1, 6, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		`"2024-01-01T06:30:00Z"`,
		`"2024-01-01T09:30:00+03:00"`,
		`"2024-01-01T06:30:00.000"`,
		`"2024-01-01 06:30:00"`,
		`1704090600000`,
	} {
		var et eventTime
		require.NoError(t, json.Unmarshal([]byte(raw), &et), raw)
		assert.True(t, et.Equal(want), "%s parsed as %s", raw, et.Time)
		assert.Equal(t, time.UTC, et.Location(), raw)
	}

	var et eventTime
	require.NoError(t, json.Unmarshal([]byte(`""`), &et))
	assert.True(t, et.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`0`), &et))
	assert.True(t, et.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &et))
}

func TestCreateInputDefaults(t *testing.T) {
	var in createActivityInput
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"a1","latitude":0,"longitude":"2","imagePath":"/x.jpg","timestamp":"2024-01-01"}`), &in))
	require.True(t, in.complete())

	a := in.toModel()
	assert.Equal(t, models.DefaultAddress, a.Address)
	assert.True(t, a.Synced)
	assert.Zero(t, a.Latitude)
	assert.Equal(t, 2.0, a.Longitude)
}

func TestUpdateInputToPatch(t *testing.T) {
	var in updateActivityInput
	require.NoError(t, json.Unmarshal([]byte(`{"address":"New","synced":false}`), &in))

	p := in.toPatch()
	require.NotNil(t, p.Address)
	assert.Equal(t, "New", *p.Address)
	require.NotNil(t, p.Synced)
	assert.False(t, *p.Synced)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.Timestamp)
}
