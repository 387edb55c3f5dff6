package timeunit_test

import (
	"testing"
	"time"

	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	require.Equal(t, 30*time.Minute, timeunit.Minutes.Duration(30))
	require.Equal(t, 4*time.Hour, timeunit.Hours.Duration(4))
	require.Equal(t, 48*time.Hour, timeunit.Days.Duration(2), "days use fixed 24h arithmetic")
}

func TestParse(t *testing.T) {
	unit, err := timeunit.Parse("DAYS")
	require.NoError(t, err)
	require.True(t, unit.Equal(timeunit.Days))

	_, err = timeunit.Parse("weeks")
	require.Error(t, err)
}
