package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_RoundTrip(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"dueDate":"2025-06-30"}`), &task))
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-06-30", task.DueDate.String())

	data, err := json.Marshal(task.DueDate)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-30"`, string(data))
}

func TestDate_AcceptsTimestampsAndNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-30T22:10:00Z"`), &d))
	assert.Equal(t, "2025-06-30", d.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"30/06/2025"`), &d))
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseOptionalDate("2024-13-01")
	assert.Error(t, err)
}

func TestBillingPeriod_Label(t *testing.T) {
	b := &BillingPeriod{ProjectID: 4, Year: 2025, Month: 3}
	assert.Equal(t, "2025-03", b.Label())
	assert.Equal(t, "billing-4-2025-03.pdf", b.ReportFileName())
}
