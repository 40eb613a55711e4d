package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

func TestParseListQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantPage   domain.Page
		wantStatus *domain.TaskStatus
		wantSearch string
		wantFields []string
	}{
		{name: "defaults", query: "", wantPage: domain.Page{Number: 1, Limit: 10}},
		{name: "all disables filters", query: "status=all&priority=all", wantPage: domain.Page{Number: 1, Limit: 10}},
		{
			name:       "explicit",
			query:      "status=completed&search=+report+&page=3&limit=25",
			wantPage:   domain.Page{Number: 3, Limit: 25},
			wantStatus: func() *domain.TaskStatus { s := domain.StatusCompleted; return &s }(),
			wantSearch: "report",
		},
		{name: "limit clamped", query: "limit=500", wantPage: domain.Page{Number: 1, Limit: domain.MaxPageLimit}},
		{name: "bad paging", query: "page=0&limit=abc", wantFields: []string{"page", "limit"}},
		{name: "bad enums", query: "status=done&priority=urgent", wantFields: []string{"status", "priority"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			filter, page, err := parseListQuery(q)
			if len(tt.wantFields) > 0 {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				for _, f := range tt.wantFields {
					assert.Contains(t, verr.Fields, f)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantStatus, filter.Status)
			assert.Nil(t, filter.Priority)
			assert.Equal(t, tt.wantSearch, filter.Search)
		})
	}
}
