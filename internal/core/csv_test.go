package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecordCSV = `name,email,organization,role,achievement
John Doe,john@example.com,Acme Corp,CTO,Led digital transformation
,missing@example.com,Org,Role
Jane Smith,jane@example.com,TechCo,Lead,Shipped v2`

func names(rs []Recipient) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestDecode_DropsShortRow(t *testing.T) {
	res, err := DecodeReport(twoRecordCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"John Doe", "Jane Smith"}, names(res.Recipients))
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Line)
	assert.Equal(t, 4, res.Skipped[0].Got)
	assert.Equal(t, 5, res.Skipped[0].Want)

	john := res.Recipients[0]
	assert.Equal(t, "john@example.com", john.Email)
	assert.Equal(t, "Acme Corp", john.Organization)
	assert.Equal(t, "CTO", john.Role)
	assert.Equal(t, "Led digital transformation", john.Achievement)
	assert.Equal(t, StatusPending, john.Status)
}

func TestDecode_MissingHeaders(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		missing []string
	}{
		{"no email", "name,organization,role,achievement", []string{"email"}},
		{"two missing", "name,email,organization", []string{"role", "achievement"}},
		{"all missing", "foo,bar", RequiredHeaders},
		{"case differs", "Name,email,organization,role,achievement", []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.header + "\na,b,c,d,e")

			var mhe *MissingHeadersError
			require.True(t, errors.As(err, &mhe), "want *MissingHeadersError, got %v", err)
			assert.Equal(t, tt.missing, mhe.Missing)
			assert.Contains(t, err.Error(), "missing required headers")
		})
	}
}

func TestDecode_HeaderOrderAndWhitespace(t *testing.T) {
	text := " achievement , role,organization ,email,  name \nWon,Lead,Org,a@b.c,Ann"

	rs, err := Decode(text)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, Recipient{
		ID:           rs[0].ID,
		Name:         "Ann",
		Email:        "a@b.c",
		Organization: "Org",
		Role:         "Lead",
		Achievement:  "Won",
		Status:       StatusPending,
	}, rs[0])
}

func TestDecode_BlankLines(t *testing.T) {
	text := "name,email,organization,role,achievement\n\nA,a@x.io,O,R,W\n   \nB,b@x.io,O,R,W\n\n"

	res, err := DecodeReport(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(res.Recipients))
	assert.Empty(t, res.Skipped)
}

func TestDecode_HeaderOnly(t *testing.T) {
	rs, err := Decode("name,email,organization,role,achievement\n")
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestDecode_EmptyRequiredFieldSkipped(t *testing.T) {
	text := "name,email,organization,role,achievement\nA,,O,R,W\nB,b@x.io,O,R,W"

	res, err := DecodeReport(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(res.Recipients))
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Reason, `"email"`)
}

func TestDecode_StatusAndExtraColumns(t *testing.T) {
	text := "name,email,organization,role,achievement,status,city\n" +
		"A,a@x.io,O,R,W,RSVP,Oslo\n" +
		"B,b@x.io,O,R,W,bounced,Bergen"

	rs, err := Decode(text)
	require.NoError(t, err)
	require.Len(t, rs, 2)

	assert.Equal(t, StatusRSVP, rs[0].Status)
	assert.Equal(t, map[string]string{"city": "Oslo"}, rs[0].Extra)
	assert.Equal(t, StatusPending, rs[1].Status, "unknown status falls back to pending")
}

func TestDecode_IDsUniqueWithinCall(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	res, err := decodeAt(twoRecordCSV, now)
	require.NoError(t, err)

	assert.Equal(t, "rec_1700000000000_1", res.Recipients[0].ID)
	assert.Equal(t, "rec_1700000000000_3", res.Recipients[1].ID)
}

func TestEncode(t *testing.T) {
	t.Run("empty input is header only", func(t *testing.T) {
		assert.Equal(t, "name,email,organization,role,achievement,status", Encode(nil))
	})

	t.Run("absent status is empty", func(t *testing.T) {
		out := Encode([]Recipient{
			{Name: "A", Email: "a@x.io", Organization: "O", Role: "R", Achievement: "W"},
			{Name: "B", Email: "b@x.io", Organization: "O", Role: "R", Achievement: "W", Status: StatusSent},
		})
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "A,a@x.io,O,R,W,", lines[1])
		assert.Equal(t, "B,b@x.io,O,R,W,sent", lines[2])
		assert.False(t, strings.HasSuffix(out, "\n"))
	})
}

func TestRoundTrip(t *testing.T) {
	first, err := Decode(SampleCSV())
	require.NoError(t, err)
	require.Len(t, first, 4)

	second, err := Decode(Encode(first))
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i := range first {
		a, b := first[i], second[i]
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b)
	}
}

func TestRoundTrip_PreservesStatus(t *testing.T) {
	in := SampleRecipients()
	out, err := Decode(Encode(in))
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Status, out[i].Status, in[i].Name)
	}
}
