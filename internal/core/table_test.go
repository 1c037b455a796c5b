package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func manyRecipients(n int) []Recipient {
	out := make([]Recipient, n)
	for i := range out {
		out[i] = Recipient{
			ID:           fmt.Sprintf("r%d", i+1),
			Name:         fmt.Sprintf("Person %d", i+1),
			Email:        fmt.Sprintf("p%d@example.com", i+1),
			Organization: "Acme",
		}
	}
	return out
}

func TestFilterRecipients(t *testing.T) {
	rs := SampleRecipients()

	tests := []struct {
		search string
		want   int
	}{
		{"", 8},
		{"   ", 8},
		{"jane", 1},
		{"TECH INNOVATORS", 2},
		{"@example.com", 8},
		{"CTO", 0}, // role is not searched
		{"nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Len(t, FilterRecipients(rs, tt.search), tt.want)
		})
	}
}

func TestPaginate(t *testing.T) {
	rs := manyRecipients(23)

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantFirst string
		wantLen   int
	}{
		{"first page", 1, 1, "r1", 10},
		{"last partial page", 3, 3, "r21", 3},
		{"clamped high", 99, 3, "r21", 3},
		{"clamped low", -4, 1, "r1", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(rs, "", tt.page, 10)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, 3, p.TotalPages)
			assert.Equal(t, 23, p.TotalRows)
			assert.Len(t, p.Recipients, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Recipients[0].ID)
		})
	}
}

func TestPaginate_NavFlags(t *testing.T) {
	rs := manyRecipients(15)

	first := Paginate(rs, "", 1, 10)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	last := Paginate(rs, "", 2, 10)
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
}

func TestPaginate_NoMatches(t *testing.T) {
	p := Paginate(manyRecipients(5), "zzz", 3, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Empty(t, p.Recipients)
}
