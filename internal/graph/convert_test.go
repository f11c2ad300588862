package graph

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
)

func TestAsFloatAndInt(t *testing.T) {
	f, ok := AsFloat(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	n, ok := AsInt64(4.9)
	assert.True(t, ok)
	assert.Equal(t, int64(4), n)

	_, ok = AsFloat("3")
	assert.False(t, ok)
	_, ok = AsInt64(nil)
	assert.False(t, ok)
}

func TestAsTime(t *testing.T) {
	ref := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
		ok   bool
	}{
		{name: "time", in: ref, want: ref, ok: true},
		{name: "rfc3339", in: "2024-03-01T10:30:00Z", want: ref, ok: true},
		{name: "local datetime string", in: "2024-03-01T10:30:00", want: ref, ok: true},
		{name: "date string", in: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "neo4j date", in: dbtype.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "garbage", in: "yesterday", ok: false},
		{name: "nil", in: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsTime(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}
