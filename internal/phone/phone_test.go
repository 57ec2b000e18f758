package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"already canonical cell", "5511987654321", "5511987654321"},
		{"already canonical landline", "551133334444", "551133334444"},
		{"eleven digits with nine", "11987654321", "5511987654321"},
		{"twelve digits without ddi", "119876543210", "55119876543210"},
		{"eleven digits missing nine", "11876543210", "55119876543210"},
		{"ten digits old cell gets nine inserted", "1187654321", "5511987654321"},
		{"ten digits landline", "1133334444", "551133334444"},
		{"ten digits third digit nine treated as landline", "2199998888", "552199998888"},
		{"nine digits assumes area code eleven", "987654321", "551987654321"},
		{"eight digits assumes ddi and area code", "87654321", "551187654321"},
		{"punctuation and spaces stripped", "(11) 98765-4321", "5511987654321"},
		{"plus and ddi", "+55 11 98765-4321", "5511987654321"},
		{"leading zeros stripped", "0011987654321", "5511987654321"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"only punctuation", "()- "},
		{"only zeros", "0000"},
		{"too short", "123"},
		{"seven digits", "8765432"},
		{"fourteen digits", "12345678901234"},
		{"ddi present with impossible area code", "5505123456789"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

// A canonical number fed back through Normalize must come out unchanged;
// the normalizer is a session-key generator and any drift would fork
// conversations.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"5511987654321",
		"11987654321",
		"1187654321",
		"1133334444",
		"987654321",
		"87654321",
		"(21) 3333-4444",
	}

	for _, raw := range inputs {
		first, err := Normalize(raw)
		require.NoError(t, err, "input %q", raw)
		second, err := Normalize(first)
		require.NoError(t, err, "canonical %q", first)
		assert.Equal(t, first, second, "input %q", raw)
	}
}

func TestIdentity(t *testing.T) {
	canonical, err := Normalize("11987654321")
	require.NoError(t, err)
	assert.Equal(t, "5511987654321@s.whatsapp.net", Identity(canonical))
}
