package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBadgeSetAddIsIdempotent(t *testing.T) {
	var badges BadgeSet
	require.True(t, badges.Add(BadgeFoundingMember))
	require.False(t, badges.Add(BadgeFoundingMember))
	require.True(t, badges.Add(BadgeKeyholder))
	require.False(t, badges.Add(""))
	require.Equal(t, BadgeSet{BadgeFoundingMember, BadgeKeyholder}, badges)
}

func TestBadgeSetScanValue(t *testing.T) {
	badges := BadgeSet{BadgeKeyholder, BadgeFoundingMember}
	v, err := badges.Value()
	require.NoError(t, err)
	require.Equal(t, `["keyholder","founding_member"]`, v)

	var scanned BadgeSet
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	require.Equal(t, badges, scanned)

	require.NoError(t, scanned.Scan(nil))
	require.Empty(t, scanned)

	var empty BadgeSet
	v, err = empty.Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)

	require.Error(t, scanned.Scan(42))
}
