package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		out   string
	}{
		{
			name:  "naive seconds",
			input: `"2024-03-01T10:15:00"`,
			want:  time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC),
			out:   `"2024-03-01T10:15:00"`,
		},
		{
			name:  "naive with fraction",
			input: `"2024-03-01T10:15:00.123456"`,
			want:  time.Date(2024, 3, 1, 10, 15, 0, 123456000, time.UTC),
			out:   `"2024-03-01T10:15:00.123456"`,
		},
		{
			name:  "space separated",
			input: `"2024-03-01 10:15:00"`,
			want:  time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC),
			out:   `"2024-03-01T10:15:00"`,
		},
		{
			name:  "rfc3339 offset converted to utc",
			input: `"2024-03-01T12:15:00+02:00"`,
			want:  time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC),
			out:   `"2024-03-01T10:15:00"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)

			out, err := json.Marshal(ts)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(out))
		})
	}
}

func TestTimestamp_UnmarshalRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
}

func TestTimestamp_NullInOptionalField(t *testing.T) {
	var body struct {
		CreatedAt *Timestamp `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"created_at": null}`), &body))
	assert.Nil(t, body.CreatedAt)
}

func TestTimestamp_Scan(t *testing.T) {
	want := time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{name: "time in utc", src: want},
		{name: "time with foreign location keeps wall clock", src: time.Date(2023, 12, 31, 23, 59, 58, 0, time.FixedZone("X", 3*3600))},
		{name: "sqlite default format", src: "2023-12-31 23:59:58"},
		{name: "driver text with offset", src: []byte("2023-12-31 23:59:58+00:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, ts.Scan(tt.src))
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	var ts Timestamp
	assert.Error(t, ts.Scan(42))
}

func TestTimestamp_Value(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -5*3600)))

	v, err := ts.Value()
	require.NoError(t, err)

	got, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 8, got.Hour())
}
