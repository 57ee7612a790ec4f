package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	var row struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "emp-7", "c": null}`), &row))

	assert.Equal(t, ID("42"), row.A)
	assert.Equal(t, ID("emp-7"), row.B)
	assert.Equal(t, ID(""), row.C)
}

func TestID_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &id))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 15), d)

	d, err = ParseDate("2024-03-15T10:30:00+00:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.String())

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal(b, &d))
	assert.True(t, d.Equal(NewDate(2024, time.January, 2).Time))
}

func TestEmployeeSummary_Initials(t *testing.T) {
	assert.Equal(t, "AL", EmployeeSummary{FirstName: "ann", LastName: "Lee"}.Initials())
	assert.Equal(t, "Ö", EmployeeSummary{FirstName: "öz"}.Initials())
	assert.Equal(t, "", EmployeeSummary{}.Initials())
}

func TestEmployee_Summary(t *testing.T) {
	e := Employee{ID: "1", FirstName: "Ann", LastName: "Lee", Program: "X", AvatarURL: "a.png", Email: "ann@example.com"}
	s := e.Summary()

	assert.Equal(t, EmployeeSummary{FirstName: "Ann", LastName: "Lee", Program: "X", AvatarURL: "a.png"}, s)
	assert.Equal(t, e.FullName(), s.FullName())
}
