package editwindow

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCheck(t *testing.T) {
	p := Policy{}
	const today = "2024-03-01"
	cases := []struct {
		name      string
		date      string
		finalized []bool
		admin     bool
		want      error
	}{
		{"admin today", today, nil, true, nil},
		{"admin yesterday across month", "2024-02-29", []bool{false, false}, true, nil},
		{"admin two days ago", "2024-02-28", nil, true, ErrOutsideWindow},
		{"admin tomorrow", "2024-03-02", nil, true, ErrOutsideWindow},
		{"admin finalized", today, []bool{false, true}, true, ErrFinalized},
		{"non-admin today", today, nil, false, ErrNotAdmin},
		{"admin malformed date", "03/01/2024", nil, true, ErrOutsideWindow},
	}
	for _, tc := range cases {
		err := p.Check(tc.date, today, tc.finalized, tc.admin)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if p.CanEdit(tc.date, today, tc.finalized, tc.admin) != (tc.want == nil) {
			t.Fatalf("%s: CanEdit disagrees with Check", tc.name)
		}
	}
}

func TestWiderWindow(t *testing.T) {
	p := Policy{WindowDays: 3}
	if err := p.Check("2024-02-27", "2024-03-01", nil, true); err != nil {
		t.Fatalf("expected editable, got %v", err)
	}
	if err := p.Check("2024-02-26", "2024-03-01", nil, true); !errors.Is(err, ErrOutsideWindow) {
		t.Fatalf("expected outside window, got %v", err)
	}
}

func TestPropertyNonAdminNeverEdits(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("non-admin is always refused", prop.ForAll(
		func(offset int, finalized []bool) bool {
			date := "2024-03-01"
			if offset > 0 {
				date = "2024-02-29"
			}
			return !Policy{}.CanEdit(date, "2024-03-01", finalized, false)
		},
		gen.IntRange(0, 1),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("any finalized record blocks admins", prop.ForAll(
		func(finalized []bool, at int) bool {
			flags := append([]bool(nil), finalized...)
			flags = append(flags, true)
			flags[len(flags)-1], flags[at%len(flags)] = flags[at%len(flags)], flags[len(flags)-1]
			return errors.Is(Policy{}.Check("2024-03-01", "2024-03-01", flags, true), ErrFinalized)
		},
		gen.SliceOf(gen.Bool()),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
