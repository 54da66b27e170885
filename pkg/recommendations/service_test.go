package recommendations

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

type fakeAPI struct {
	calls    []call
	response string
	err      error
}

func (f *fakeAPI) Get(_ context.Context, path string, query url.Values, out any) error {
	f.calls = append(f.calls, call{method: "GET", path: path, query: query})
	return f.reply(out)
}

func (f *fakeAPI) Post(_ context.Context, path string, body, out any) error {
	f.calls = append(f.calls, call{method: "POST", path: path, body: body})
	return f.reply(out)
}

func (f *fakeAPI) reply(out any) error {
	if f.err != nil {
		return f.err
	}
	if f.response == "" || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(f.response), out)
}

func TestGetRecommendationsParams(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		wantPath string
		want     url.Values
	}{
		{
			name:     "defaults",
			filter:   Filter{},
			wantPath: "/recommendations",
			want:     url.Values{"limit": {"20"}},
		},
		{
			name:     "archived with everything",
			filter:   Filter{Archived: true, Search: "bucket", Tags: []string{"CIS", "AWS"}, Cursor: "c2"},
			wantPath: "/recommendations/archive",
			want:     url.Values{"limit": {"20"}, "search": {"bucket"}, "tags": {"CIS,AWS"}, "cursor": {"c2"}},
		},
		{
			name:     "custom limit",
			filter:   Filter{Limit: 5},
			wantPath: "/recommendations",
			want:     url.Values{"limit": {"5"}},
		},
		{
			name:     "explicit zero limit",
			filter:   Filter{LimitSet: true},
			wantPath: "/recommendations",
			want:     url.Values{"limit": {"0"}},
		},
		{
			name:     "empty tags omitted",
			filter:   Filter{Tags: []string{}},
			wantPath: "/recommendations",
			want:     url.Values{"limit": {"20"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{response: `{"data":[],"pagination":{"cursor":{"next":null},"totalItems":0}}`}
			svc := NewService(api, 0)
			_, err := svc.GetRecommendations(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, api.calls, 1)
			assert.Equal(t, "GET", api.calls[0].method)
			assert.Equal(t, tt.wantPath, api.calls[0].path)
			assert.Equal(t, tt.want, api.calls[0].query)
		})
	}
}

func TestGetRecommendationsDecodesPage(t *testing.T) {
	api := &fakeAPI{response: `{
		"data": [{
			"recommendationId": "rec-001",
			"title": "Enable MFA",
			"score": 80,
			"provider": [1, 2, 9],
			"class": 4,
			"frameworks": [{"name": "CIS", "section": "1", "subsection": "1.2"}],
			"furtherReading": [{"name": "Docs", "href": "https://docs.aws.amazon.com/x"}],
			"impactAssessment": {"totalViolations": 3, "mostImpactedScope": {"name": "prod", "type": "account", "count": 2}}
		}],
		"pagination": {"cursor": {"next": "abc"}, "totalItems": 7},
		"availableTags": {"frameworks": ["CIS"], "providers": ["AWS"], "classes": [], "reasons": ["r"]}
	}`}
	svc := NewService(api, 10)

	page, err := svc.GetRecommendations(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	rec := page.Data[0]
	assert.Equal(t, "rec-001", rec.RecommendationID)
	assert.Equal(t, []CloudProvider{ProviderAWS, ProviderAzure, 9}, rec.Provider)
	assert.Equal(t, "Amazon Web Services", rec.Provider[0].FullName())
	assert.Equal(t, "Unspecified", rec.Provider[2].FullName())
	assert.Equal(t, "Identity", rec.Class.String())
	assert.Equal(t, 2, rec.ImpactAssessment.MostImpactedScope.Count)

	next, ok := page.NextCursor()
	assert.True(t, ok)
	assert.Equal(t, "abc", next)
	assert.Equal(t, 7, page.Pagination.TotalItems)
	assert.Equal(t, 3, page.AvailableTags.Len())
	assert.Equal(t, url.Values{"limit": {"10"}}, api.calls[0].query)
}

func TestArchiveAndUnarchive(t *testing.T) {
	api := &fakeAPI{response: `{"success":true}`}
	svc := NewService(api, 0)

	res, err := svc.Archive(context.Background(), "rec/001")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = svc.Unarchive(context.Background(), "rec-002")
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, api.calls, 2)
	assert.Equal(t, "/recommendations/rec%2F001/archive", api.calls[0].path)
	assert.Nil(t, api.calls[0].body)
	assert.Equal(t, "/recommendations/rec-002/unarchive", api.calls[1].path)
}

func TestAvailableTagsSendsZeroLimit(t *testing.T) {
	api := &fakeAPI{response: `{"data":[],"availableTags":{"frameworks":["CIS","NIST"]}}`}
	svc := NewService(api, 0)

	tags, err := svc.AvailableTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CIS", "NIST"}, tags.Frameworks)
	assert.Equal(t, url.Values{"limit": {"0"}}, api.calls[0].query)
}

func TestErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeAPI{err: boom}, 0)

	_, err := svc.GetRecommendations(context.Background(), Filter{})
	assert.ErrorIs(t, err, boom)
	_, err = svc.Archive(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Login(context.Background(), "u", "p")
	assert.ErrorIs(t, err, boom)
}

func TestLogin(t *testing.T) {
	api := &fakeAPI{response: `{"token":"tok","user":{"username":"jane","email":"jane@example.com"}}`}
	svc := NewService(api, 0)

	res, err := svc.Login(context.Background(), "jane", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, "/login", api.calls[0].path)
	assert.Equal(t, LoginRequest{Username: "jane", Password: "secret"}, api.calls[0].body)

	_, err = NewService(&fakeAPI{response: `{}`}, 0).Login(context.Background(), "jane", "secret")
	assert.Error(t, err)
}
