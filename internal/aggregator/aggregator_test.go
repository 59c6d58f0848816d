package aggregator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
)

func at(day, hour, minute, second int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, second, 0, time.UTC)
}

func record(start time.Time, d time.Duration, customer, activity, comment string, tags ...string) domain.RawRecord {
	return domain.RawRecord{
		Start:    start,
		End:      start.Add(d),
		Customer: customer,
		Activity: activity,
		Comment:  comment,
		Tags:     tags,
	}
}

func TestAggregateMergesFragmentsOfOneDay(t *testing.T) {
	records := []domain.RawRecord{
		record(at(4, 9, 0, 0), 15*time.Minute, "Acme", "Dev", "fix login"),
		record(at(4, 12, 15, 0), 20*time.Minute, "Acme", "Dev", "review"),
	}

	subs, err := Aggregate(records)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	assert.Equal(t, domain.Submission{
		StartTime: "03/04/2024 09:00:00",
		EndTime:   "03/04/2024 09:35:00",
		Customer:  "Acme",
		Activity:  "Dev",
		Comments:  "fix login; review",
		Tags:      "",
		Minutes:   30,
	}, subs[0])
}

func TestAggregateSplitsByDayCustomerAndActivity(t *testing.T) {
	records := []domain.RawRecord{
		record(at(4, 9, 0, 0), 30*time.Minute, "Acme", "Dev", "a"),
		record(at(5, 9, 0, 0), 30*time.Minute, "Acme", "Dev", "b"),
		record(at(4, 10, 0, 0), 30*time.Minute, "Globex", "Dev", "c"),
		record(at(4, 11, 0, 0), 30*time.Minute, "Acme", "Support", "d"),
	}

	subs, err := Aggregate(records)
	require.NoError(t, err)
	require.Len(t, subs, 4)

	assert.Equal(t, []string{"a", "c", "d", "b"}, []string{subs[0].Comments, subs[1].Comments, subs[2].Comments, subs[3].Comments})
}

func TestAggregateRejectsMalformedBatch(t *testing.T) {
	good := record(at(4, 9, 0, 0), 30*time.Minute, "Acme", "Dev", "ok")

	t.Run("missing end", func(t *testing.T) {
		running := domain.RawRecord{Start: at(4, 10, 0, 0), Customer: "Acme", Activity: "Dev"}
		subs, err := Aggregate([]domain.RawRecord{good, running})
		require.Error(t, err)
		assert.True(t, apperrors.IsMalformedRecord(err))
		assert.Nil(t, subs)
	})

	t.Run("end before start", func(t *testing.T) {
		backwards := record(at(4, 10, 0, 0), -time.Minute, "Acme", "Dev", "oops")
		subs, err := Aggregate([]domain.RawRecord{good, backwards})
		require.Error(t, err)
		assert.True(t, apperrors.IsMalformedRecord(err))
		assert.Nil(t, subs)
	})
}

func TestAggregateEmpty(t *testing.T) {
	subs, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestAggregateIgnoresInputOrder(t *testing.T) {
	records := []domain.RawRecord{
		record(at(4, 9, 0, 0), 15*time.Minute, "Acme", "Dev", "one", "billable"),
		record(at(4, 9, 30, 0), 7*time.Minute, "Acme", "Dev", "two"),
		record(at(4, 13, 0, 0), 44*time.Minute, "Acme", "Dev", "three", "billable", "urgent"),
		record(at(4, 10, 0, 0), 61*time.Second, "Globex", "Support", "call"),
		record(at(5, 8, 0, 0), 2*time.Hour, "Acme", "Dev", "next day"),
		record(at(4, 16, 0, 0), 5*time.Minute, "", "", "unassigned"),
	}

	want, err := Aggregate(records)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]domain.RawRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := Aggregate(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestGroupConservesDuration(t *testing.T) {
	records := []domain.RawRecord{
		record(at(4, 9, 0, 0), 15*time.Minute+time.Second, "Acme", "Dev", "a"),
		record(at(4, 11, 0, 0), 20*time.Minute, "Acme", "Dev", "b"),
		record(at(4, 14, 0, 0), 59*time.Second, "Acme", "Dev", "c"),
		record(at(4, 9, 0, 0), 3*time.Minute, "Globex", "Dev", "d"),
	}

	want := map[domain.GroupKey]int{}
	for _, r := range records {
		want[r.Key()] += ToMinutes(r.Duration())
	}

	for _, group := range Group(records) {
		merged := Combine(group)
		assert.Equal(t, want[group[0].Key()], ToMinutes(merged.End.Sub(merged.Start)))
	}
}

func TestGroupOrdersRecordsByStart(t *testing.T) {
	records := []domain.RawRecord{
		record(at(4, 15, 0, 0), time.Minute, "Acme", "Dev", "late"),
		record(at(4, 8, 0, 0), time.Minute, "Acme", "Dev", "early"),
		record(at(4, 11, 0, 0), time.Minute, "Acme", "Dev", "middle"),
	}

	groups := Group(records)
	require.Len(t, groups, 1)
	assert.Equal(t, "early", groups[0][0].Comment)
	assert.Equal(t, "middle", groups[0][1].Comment)
	assert.Equal(t, "late", groups[0][2].Comment)
	// input untouched
	assert.Equal(t, "late", records[0].Comment)
}
