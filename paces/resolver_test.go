package paces

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparta-training/models"
)

type fakeSettings struct {
	settings models.AthleteSettings
	err      error
	calls    int
}

func (f *fakeSettings) Load(string) (models.AthleteSettings, error) {
	f.calls++
	return f.settings, f.err
}

func intPtr(i int) *int { return &i }

func TestTableIsOrderedAndFixed(t *testing.T) {
	table := Table()
	require.Len(t, table, 8)
	assert.Equal(t, 210, table[0].BaseSeconds)
	assert.Equal(t, 330, table[len(table)-1].BaseSeconds)
	for i := 1; i < len(table); i++ {
		assert.Greater(t, table[i].BaseSeconds, table[i-1].BaseSeconds)
	}

	table[0].TenK = "changed"
	assert.Equal(t, "3:30", Table()[0].TenK)
}

func TestFindNearestRow(t *testing.T) {
	table := Table()

	row, ok := FindNearestRow(table, 241)
	require.True(t, ok)
	assert.Equal(t, "40 min (4:00/km)", row.Label)

	row, _ = FindNearestRow(table, 100)
	assert.Equal(t, 210, row.BaseSeconds)

	row, _ = FindNearestRow(table, 999)
	assert.Equal(t, 330, row.BaseSeconds)

	// 249 is 9 from both 240 and 258: first occurrence wins.
	row, _ = FindNearestRow(table, 249)
	assert.Equal(t, 240, row.BaseSeconds)

	_, ok = FindNearestRow(nil, 240)
	assert.False(t, ok)
}

func TestFindNearestRowMinimizesDistance(t *testing.T) {
	table := Table()
	for s := 150; s <= 360; s++ {
		row, ok := FindNearestRow(table, s)
		require.True(t, ok)
		got := abs(row.BaseSeconds - s)
		for _, other := range table {
			assert.LessOrEqual(t, got, abs(other.BaseSeconds-s), "seconds=%d", s)
		}
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func TestParsePaceToSeconds(t *testing.T) {
	seconds, err := ParsePaceToSeconds("04:30")
	require.NoError(t, err)
	assert.Equal(t, 270, seconds)

	seconds, err = ParsePaceToSeconds("4:05")
	require.NoError(t, err)
	assert.Equal(t, 245, seconds)

	_, err = ParsePaceToSeconds("")
	assert.ErrorIs(t, err, ErrPaceEmpty)

	_, err = ParsePaceToSeconds("4:30:00")
	assert.ErrorIs(t, err, ErrPaceFormat)
	assert.False(t, errors.Is(err, ErrPaceSeconds))

	_, err = ParsePaceToSeconds("04:75")
	assert.ErrorIs(t, err, ErrPaceSeconds)
	assert.False(t, errors.Is(err, ErrPaceFormat))

	for _, bad := range []string{"270", "4:3", "104:30", " 4:30", "a:bc", "4.30"} {
		_, err = ParsePaceToSeconds(bad)
		assert.ErrorIs(t, err, ErrPaceFormat, "input %q", bad)
	}
}

func TestFormatSecondsToPace(t *testing.T) {
	assert.Equal(t, "04:30", FormatSecondsToPace(270))
	assert.Equal(t, "00:00", FormatSecondsToPace(-5))
	assert.Equal(t, "03:00", FormatSecondsToPace(180))
}

func TestPaceRoundTrip(t *testing.T) {
	for m := 0; m < 100; m++ {
		for s := 0; s < 60; s++ {
			text := FormatSecondsToPace(m*60 + s)
			got, err := ParsePaceToSeconds(text)
			require.NoError(t, err, text)
			assert.Equal(t, m*60+s, got)
		}
	}
}

func TestValidateBaseSeconds(t *testing.T) {
	assert.NoError(t, ValidateBaseSeconds(180))
	assert.NoError(t, ValidateBaseSeconds(330))
	assert.ErrorIs(t, ValidateBaseSeconds(179), ErrPaceRange)
	assert.ErrorIs(t, ValidateBaseSeconds(331), ErrPaceRange)
}

func TestComputeBasePaceSeconds(t *testing.T) {
	s, ok := ComputeBasePaceSeconds(models.AthleteSettings{BasePaceInput: "04:10"})
	require.True(t, ok)
	assert.Equal(t, 250, s)

	s, ok = ComputeBasePaceSeconds(models.AthleteSettings{BasePaceSeconds: intPtr(240), BasePaceInput: "05:00"})
	require.True(t, ok)
	assert.Equal(t, 240, s)

	_, ok = ComputeBasePaceSeconds(models.AthleteSettings{BasePaceInput: "bogus"})
	assert.False(t, ok)

	_, ok = ComputeBasePaceSeconds(models.AthleteSettings{})
	assert.False(t, ok)
}

func TestToTempoMapAliases(t *testing.T) {
	row := PaceRow{FiveK: "4:00", TenK: "4:10", HalfMarathon: "4:20", Marathon: "4:30", Aerobic: "5:00"}
	m := ToTempoMap(row)

	assert.Len(t, m, 7)
	assert.Equal(t, "5:00", m[LabelAeroob])
	assert.Equal(t, m[LabelAeroob], m[LabelAerobe])
	assert.Equal(t, m[LabelAeroob], m[LabelRecovery])
	assert.Equal(t, "4:10", m[Label10K])
	_, has3K := m[Label3K]
	assert.False(t, has3K)
}

func TestResolveTempoPaces(t *testing.T) {
	m := ResolveTempoPaces(models.AthleteSettings{BasePaceSeconds: intPtr(240)}, "", nil)
	assert.Equal(t, "4:00", m[Label10K])
	assert.Equal(t, "5:00-5:35", m[LabelRecovery])
}

func TestResolveTempoPacesLoadsFromStore(t *testing.T) {
	store := &fakeSettings{settings: models.AthleteSettings{BasePaceInput: "03:31"}}

	m := ResolveTempoPaces(models.AthleteSettings{}, "42", store)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "3:30", m[Label10K])

	// Given settings win over the store.
	m = ResolveTempoPaces(models.AthleteSettings{BasePaceSeconds: intPtr(330)}, "42", store)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "5:30", m[Label10K])
}

func TestResolveTempoPacesWithoutBasePace(t *testing.T) {
	store := &fakeSettings{err: errors.New("disk gone")}
	m := ResolveTempoPaces(models.AthleteSettings{}, "42", store)
	assert.NotNil(t, m)
	assert.Empty(t, m)

	assert.Empty(t, ResolveTempoPaces(models.AthleteSettings{}, "", nil))
}

func TestTempoMapContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))

	want := ResolveTempoPaces(models.AthleteSettings{BasePaceSeconds: intPtr(240)}, "", nil)
	ctx := NewContext(context.Background(), want)
	assert.Equal(t, want, FromContext(ctx))

	cleared := NewContext(ctx, nil)
	assert.Empty(t, FromContext(cleared))
}

func TestMessage(t *testing.T) {
	_, err := ParsePaceToSeconds("04:75")
	assert.Contains(t, Message(err), "59")
	assert.Equal(t, "Kies een tempo tussen 03:00 en 05:30.", Message(ValidateBaseSeconds(10)))
}

func TestLabels(t *testing.T) {
	assert.True(t, IsKnownLabel("Half Marathon"))
	assert.False(t, IsKnownLabel("Aeroob"))
	assert.Equal(t, []string{"10K", "Recovery"}, FilterLabels([]string{"10K", "", "Sprint", "Recovery", "10K"}))
}

func TestRowLevel(t *testing.T) {
	assert.Equal(t, "40 min", Table()[2].Level())
}
