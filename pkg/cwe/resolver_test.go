package cwe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryResolver_Lookup(t *testing.T) {
	resolver := NewDictionaryResolver()

	tests := []struct {
		name       string
		identifier string
		wantID     int
		wantNil    bool
	}{
		{
			name:       "canonical form",
			identifier: "CWE-79",
			wantID:     79,
		},
		{
			name:       "lowercase prefix",
			identifier: "cwe-89",
			wantID:     89,
		},
		{
			name:       "bare numeric id",
			identifier: "502",
			wantID:     502,
		},
		{
			name:       "id with trailing classification text",
			identifier: "CWE-79 Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')",
			wantID:     79,
		},
		{
			name:       "surrounding whitespace",
			identifier: "  CWE-22  ",
			wantID:     22,
		},
		{
			name:       "unknown id",
			identifier: "CWE-99999",
			wantNil:    true,
		},
		{
			name:       "noinfo placeholder",
			identifier: "NVD-CWE-noinfo",
			wantNil:    true,
		},
		{
			name:       "empty",
			identifier: "",
			wantNil:    true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := resolver.Lookup(test.identifier)
			if test.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, test.wantID, got.ID)
			assert.NotEmpty(t, got.Name)
		})
	}
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("CWE-1321")
	require.True(t, ok)
	assert.Equal(t, 1321, id)

	_, ok = ParseID("CWE-")
	assert.False(t, ok)

	_, ok = ParseID("CWE--5")
	assert.False(t, ok)
}
