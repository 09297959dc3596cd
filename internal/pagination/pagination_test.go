package pagination

import "testing"

func TestDefaults(t *testing.T) {
	tests := []struct {
		name             string
		in               PageRequest
		wantPage, wantSz int
	}{
		{"zero_values", PageRequest{}, 1, DefaultPageSize},
		{"kept", PageRequest{Page: 3, PageSize: 10}, 3, 10},
		{"clamped", PageRequest{Page: -1, PageSize: 1000}, 1, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantSz {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.wantPage, tt.wantSz)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("expected offset 50, got %d", got)
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 2, 10, 21)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Items == nil {
		t.Error("expected an empty, non-nil slice")
	}
}
