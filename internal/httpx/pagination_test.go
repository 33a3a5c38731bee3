package httpx

import (
	"net/http/httptest"
	"testing"
)

func TestPaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/observations", nil)
	if p := getPage(r); p != 1 {
		t.Errorf("page = %d, want 1", p)
	}
	if l := getLimit(r, 20, 200); l != 20 {
		t.Errorf("limit = %d, want default 20", l)
	}

	r = httptest.NewRequest("GET", "/observations?page=3&limit=500", nil)
	if p := getPage(r); p != 3 {
		t.Errorf("page = %d, want 3", p)
	}
	if l := getLimit(r, 20, 200); l != 200 {
		t.Errorf("limit = %d, want capped at 200", l)
	}

	r = httptest.NewRequest("GET", "/observations?page=-2&limit=0", nil)
	if p := getPage(r); p != 1 {
		t.Errorf("negative page = %d, want 1", p)
	}
	if l := getLimit(r, 20, 200); l != 20 {
		t.Errorf("zero limit = %d, want default", l)
	}
}
