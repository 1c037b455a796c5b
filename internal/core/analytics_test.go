package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats_SampleData(t *testing.T) {
	st := ComputeStats(SampleRecipients())

	assert.Equal(t, 8, st.Total)
	assert.Equal(t, 7, st.Sent)
	assert.Equal(t, 5, st.Opened)
	assert.Equal(t, 3, st.Clicked)
	assert.Equal(t, 2, st.RSVP)
	assert.Equal(t, 1, st.Unsubscribed)

	assert.Equal(t, []Slice{
		{Name: "Unsubscribed", Value: 1, Color: "#ef4444"},
		{Name: "Pending", Value: 1, Color: "#9ca3af"},
		{Name: "Sent (No Open)", Value: 1, Color: "#60a5fa"},
		{Name: "Opened (No Click)", Value: 2, Color: "#a855f7"},
		{Name: "Clicked (No RSVP)", Value: 1, Color: "#f59e0b"},
		{Name: "RSVP", Value: 2, Color: "#10b981"},
	}, st.Breakdown)

	sum := 0
	for _, s := range st.Breakdown {
		sum += s.Value
	}
	assert.Equal(t, st.Total, sum)

	require.Len(t, st.Rates, 4)
	assert.Equal(t, 71.4, st.Rates[0].Value) // 5/7
	assert.Equal(t, 60.0, st.Rates[1].Value) // 3/5
	assert.Equal(t, 66.7, st.Rates[2].Value) // 2/3
	assert.Equal(t, 14.3, st.Rates[3].Value) // 1/7
	assert.True(t, st.Rates[3].Negative)
}

func TestComputeStats_Organizations(t *testing.T) {
	rs := []Recipient{
		{Organization: "B"}, {Organization: "A"}, {Organization: "A"},
		{Organization: ""}, {Organization: "C"}, {Organization: "D"},
		{Organization: "E"}, {Organization: "F"},
	}

	st := ComputeStats(rs)
	require.Len(t, st.Organizations, TopOrganizationsLimit)
	assert.Equal(t, Slice{Name: "A", Value: 2}, st.Organizations[0])
	assert.Equal(t, "B", st.Organizations[1].Name, "ties keep first-seen order")
	assert.Equal(t, "Unknown", st.Organizations[2].Name)
}

func TestComputeStats_Empty(t *testing.T) {
	st := ComputeStats(nil)

	assert.Zero(t, st.Total)
	assert.Empty(t, st.Breakdown)
	assert.Empty(t, st.Organizations)
	for _, r := range st.Rates {
		assert.Zero(t, r.Value, r.Label)
	}
	require.Len(t, st.Funnel, 4)
}

func TestComputeStats_AbsentStatusIsPending(t *testing.T) {
	st := ComputeStats([]Recipient{{Name: "x"}, {Name: "y", Status: StatusPending}})
	assert.Zero(t, st.Sent)
	assert.Equal(t, []Slice{{Name: "Pending", Value: 2, Color: "#9ca3af"}}, st.Breakdown)
}
