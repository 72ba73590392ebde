package series

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParse(t *testing.T) {
	testData := map[string]struct {
		csv      string
		opts     Options
		expLen   int
		expLast  string
		expFirst string
		err      error
	}{
		"ordered": {
			csv:      "date,pm25\n2024-06-28,40.1\n2024-06-29,38\n2024-06-30,35.5\n",
			opts:     Options{DateColumn: "date"},
			expLen:   3,
			expFirst: "2024-06-28",
			expLast:  "2024-06-30",
		},
		"unordered rows are sorted": {
			csv:      "pm25,date\n1,2024-06-30\n2,2024-01-01\n3,2024-03-15\n",
			opts:     Options{DateColumn: "date"},
			expLen:   3,
			expFirst: "2024-01-01",
			expLast:  "2024-06-30",
		},
		"timestamps truncate to days": {
			csv:      "Date\n2024-06-30 23:00:00\n2024-06-29T10:00:00Z\n",
			opts:     Options{DateColumn: "date"},
			expLen:   2,
			expFirst: "2024-06-29",
			expLast:  "2024-06-30",
		},
		"blank values allowed": {
			csv:      "date,pm25\n2024-06-29,\n2024-06-30,12\n",
			opts:     Options{DateColumn: "date"},
			expLen:   2,
			expFirst: "2024-06-29",
			expLast:  "2024-06-30",
		},
		"missing readings are ignored": {
			csv:      "date,pm25\n2024-06-28,40.1\n2024-06-29,NA\n2024-06-30,38\n2024-07-01,high\n",
			opts:     Options{DateColumn: "date"},
			expLen:   4,
			expFirst: "2024-06-28",
			expLast:  "2024-07-01",
		},
		"header only": {
			csv:  "date,pm25\n",
			opts: Options{DateColumn: "date"},
			err:  ErrEmpty,
		},
		"empty document": {
			csv:  "",
			opts: Options{DateColumn: "date"},
			err:  ErrEmpty,
		},
		"missing column": {
			csv:  "day,pm25\n2024-06-30,1\n",
			opts: Options{DateColumn: "date"},
			err:  ErrMissingColumn,
		},
		"bad date": {
			csv:  "date\nyesterday\n",
			opts: Options{DateColumn: "date"},
			err:  ErrParse,
		},
		"duplicate date": {
			csv:  "date\n2024-06-30\n2024-06-30 12:00:00\n",
			opts: Options{DateColumn: "date"},
			err:  ErrDuplicateDate,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := Parse(strings.NewReader(td.csv), td.opts)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expLen, s.Len())
			assert.Equal(t, day(td.expFirst), s.FirstObservedDate())
			assert.Equal(t, day(td.expLast), s.LastObservedDate())
		})
	}
}

func TestNewSortsAndNormalizes(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*60*60)
	s, err := New([]time.Time{
		time.Date(2024, 1, 2, 18, 30, 0, 0, dhaka),
		day("2024-01-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, day("2024-01-01"), s.FirstObservedDate())
	assert.Equal(t, day("2024-01-02"), s.LastObservedDate())

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

type mapFetcher map[string]string

func (m mapFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	v, ok := m[location]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(v), nil
}

func TestMemoryStore(t *testing.T) {
	s, err := Load(context.Background(), mapFetcher{"h.csv": "date\n2024-06-29\n2024-06-30\n"}, "h.csv", Options{})
	require.NoError(t, err)

	store := NewMemoryStore(s)
	last, err := store.LastObservedDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, day("2024-06-30"), last)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, s, snap)
}

func TestReloadingStoreReadsEachCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.csv")
	require.NoError(t, os.WriteFile(path, []byte("date\n2024-06-30\n"), 0o644))

	store := NewReloadingStore(fileFetcher{}, path, Options{DateColumn: "date"})
	last, err := store.LastObservedDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, day("2024-06-30"), last)

	require.NoError(t, os.WriteFile(path, []byte("date\n2024-06-30\n2024-07-01\n"), 0o644))
	last, err = store.LastObservedDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, day("2024-07-01"), last)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())

	require.NoError(t, os.Remove(path))
	_, err = store.LastObservedDate(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type fileFetcher struct{}

func (fileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	return os.ReadFile(location)
}
