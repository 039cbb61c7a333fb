package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindows(t *testing.T) {
	tests := []struct {
		in   string
		want []int
		err  bool
	}{
		{"10,20,30", []int{10, 20, 30}, false},
		{" 5 , 50 ", []int{5, 50}, false},
		{"10,,20", []int{10, 20}, false},
		{"10,x", nil, true},
		{"0", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWindows(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionalDate(t *testing.T) {
	d, err := parseOptionalDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseOptionalDate("2023-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = parseOptionalDate("31/03/2023")
	assert.Error(t, err)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "GSPC", safeName("^GSPC"))
	assert.Equal(t, "BRK.B", safeName("BRK.B"))
}
