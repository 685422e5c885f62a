package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParseStart(t *testing.T) {
	cases := []struct {
		url  string
		want int
	}{
		{"/events", 1},
		{"/events?start=1", 1},
		{"/events?start=51", 51},
		{"/events?start=0", 1},
		{"/events?start=-5", 1},
		{"/events?start=abc", 1},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", tc.url, nil)
		if got := ParseStart(r); got != tc.want {
			t.Errorf("ParseStart(%q) = %d, want %d", tc.url, got, tc.want)
		}
	}
}

func TestParsePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/schedules?page=3", nil)
	if got := ParsePage(r); got != 3 {
		t.Errorf("ParsePage = %d, want 3", got)
	}
	r = httptest.NewRequest("GET", "/api/schedules?page=junk", nil)
	if got := ParsePage(r); got != 1 {
		t.Errorf("ParsePage = %d, want 1", got)
	}
}

func TestSkipLimit(t *testing.T) {
	skip, limit := SkipLimit(1)
	if skip != 0 || limit != int64(PageSize+1) {
		t.Errorf("SkipLimit(1) = %d, %d", skip, limit)
	}
	skip, _ = SkipLimit(3)
	if skip != int64(2*PageSize) {
		t.Errorf("SkipLimit(3) skip = %d", skip)
	}
}

func TestTrimPage(t *testing.T) {
	full := make([]int, PageSize+1)
	res := TrimPage(&full, 1)
	if len(full) != PageSize {
		t.Errorf("len after trim = %d", len(full))
	}
	if !res.HasNext || res.HasPrev {
		t.Errorf("first full page: %+v", res)
	}

	partial := make([]int, 10)
	res = TrimPage(&partial, PageSize+1)
	if len(partial) != 10 {
		t.Errorf("partial page trimmed to %d", len(partial))
	}
	if res.HasNext || !res.HasPrev {
		t.Errorf("last partial page: %+v", res)
	}
}

func TestComputeRange(t *testing.T) {
	r := ComputeRange(1, 0)
	if r.Start != 0 || r.End != 0 {
		t.Errorf("empty range: %+v", r)
	}

	r = ComputeRange(51, 50)
	if r.Start != 51 || r.End != 100 || r.PrevStart != 1 || r.NextStart != 101 {
		t.Errorf("second page range: %+v", r)
	}

	r = ComputeRange(1, 25)
	if r.Start != 1 || r.End != 25 {
		t.Errorf("first page range: %+v", r)
	}
}
