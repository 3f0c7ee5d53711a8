package params

import (
	"strings"
	"testing"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		kind  domain.ParamKind
		value string
		ok    bool
	}{
		{domain.ParamBool, "true", true},
		{domain.ParamBool, "false", true},
		{domain.ParamBool, "yes", false},
		{domain.ParamFloat, "-1.5", true},
		{domain.ParamFloat, "3.", true},
		{domain.ParamFloat, "3", true},
		{domain.ParamFloat, ".5", false},
		{domain.ParamFloat, "1e3", false},
		{domain.ParamInt, "-12", true},
		{domain.ParamInt, "1.0", false},
		{domain.ParamUint, "12", true},
		{domain.ParamUint, "-12", false},
		{domain.ParamUint, "4294967295", true},
		{domain.ParamUint, "99999999999", false},
		{domain.ParamInt, "2147483647", true},
		{domain.ParamInt, "-2147483649", false},
		{domain.ParamInt, "99999999999", false},
		{domain.ParamFloat, "1" + strings.Repeat("0", 400), false},
		{domain.ParamString, "anything at all", true},
		{domain.ParamPosition, "1,2.5", true},
		{domain.ParamPosition, "1", false},
		{domain.ParamPosition, "1,", false},
		{domain.ParamPositionList, "0,0;10,5.5", true},
		{domain.ParamPositionList, "0,0;10", false},
		{domain.ParamPositionList, "0,0;", true},
		{domain.ParamPositionList, "", false},
	}
	for _, c := range cases {
		err := Validate(c.kind, c.value)
		if c.ok {
			assert.NoError(t, err, "%s %q", c.kind, c.value)
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidValue, "%s %q", c.kind, c.value)
		}
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	assert.ErrorIs(t, Validate("color", "red"), domain.ErrInvalidValue)
}

func TestParsePositionList(t *testing.T) {
	ps, err := ParsePositionList("0,0; 10,-5.5")
	require.NoError(t, err)
	assert.Equal(t, []domain.Position{{0, 0}, {10, -5.5}}, ps)
	assert.Equal(t, "0,0;10,-5.5", FormatPositionList(ps))
}

func TestParseNumbers(t *testing.T) {
	f, err := ParseFloat("2.25")
	require.NoError(t, err)
	assert.Equal(t, 2.25, f)
	assert.Equal(t, "2.25", FormatFloat(f))

	n, err := ParseInt("-7")
	require.NoError(t, err)
	assert.Equal(t, int64(-7), n)

	_, err = ParseUint("99999999999")
	assert.ErrorIs(t, err, domain.ErrInvalidValue, "out of 32-bit range")

	b, err := ParseBool("true")
	require.NoError(t, err)
	assert.True(t, b)
}
