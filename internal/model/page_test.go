package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_EncodeDecode(t *testing.T) {
	orig := Cursor{
		SortValue: time.Date(2024, 6, 1, 12, 30, 0, 123456789, time.UTC),
		LastID:    42,
	}

	token := orig.Encode()
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, orig.SortValue.Equal(decoded.SortValue))
	assert.Equal(t, orig.LastID, decoded.LastID)
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "%%%not-base64%%%"},
		{name: "not json", token: "bm90LWpzb24"},
		{name: "zero id", token: Cursor{SortValue: time.Now(), LastID: 0}.Encode()},
		{name: "negative id", token: Cursor{SortValue: time.Now(), LastID: -5}.Encode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := DecodeCursor(tt.token)
			require.Error(t, err)
			assert.Nil(t, cursor)
			assert.Contains(t, err.Error(), "malformed cursor")
		})
	}
}

func TestNormalizePageSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "zero falls back to default", in: 0, want: DefaultPageSize},
		{name: "negative falls back to default", in: -3, want: DefaultPageSize},
		{name: "minimum kept", in: MinPageSize, want: MinPageSize},
		{name: "in range kept", in: 37, want: 37},
		{name: "maximum kept", in: MaxPageSize, want: MaxPageSize},
		{name: "above maximum clamped", in: MaxPageSize + 1, want: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePageSize(tt.in))
		})
	}
}
