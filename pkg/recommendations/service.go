package recommendations

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const DefaultPageSize = 20

const (
	activePath  = "/recommendations"
	archivePath = "/recommendations/archive"
)

// API is the transport the service shapes requests for. *apiclient.Client implements it.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Service builds requests for the recommendations endpoints. It holds no state.
type Service struct {
	api      API
	pageSize int
}

func NewService(api API, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{api: api, pageSize: pageSize}
}

// PageSize is the limit sent when a Filter does not set one.
func (s *Service) PageSize() int { return s.pageSize }

// Params returns the query parameters for f.
func (s *Service) Params(f Filter) url.Values {
	limit := s.pageSize
	if f.LimitSet || f.Limit > 0 {
		limit = f.Limit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if len(f.Tags) > 0 {
		params.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.Cursor != "" {
		params.Set("cursor", f.Cursor)
	}
	return params
}

// GetRecommendations fetches one page of the active or archived list.
func (s *Service) GetRecommendations(ctx context.Context, f Filter) (*Page, error) {
	endpoint := activePath
	if f.Archived {
		endpoint = archivePath
	}
	var page Page
	if err := s.api.Get(ctx, endpoint, s.Params(f), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AvailableTags fetches the filter vocabulary without any recommendations.
func (s *Service) AvailableTags(ctx context.Context) (AvailableTags, error) {
	page, err := s.GetRecommendations(ctx, Filter{Limit: 0, LimitSet: true})
	if err != nil {
		return AvailableTags{}, err
	}
	return page.AvailableTags, nil
}

func (s *Service) Archive(ctx context.Context, id string) (SuccessResponse, error) {
	return s.post(ctx, "/recommendations/"+url.PathEscape(id)+"/archive")
}

func (s *Service) Unarchive(ctx context.Context, id string) (SuccessResponse, error) {
	return s.post(ctx, "/recommendations/"+url.PathEscape(id)+"/unarchive")
}

func (s *Service) post(ctx context.Context, path string) (SuccessResponse, error) {
	var res SuccessResponse
	err := s.api.Post(ctx, path, nil, &res)
	return res, err
}

// Login exchanges credentials for a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var res LoginResponse
	if err := s.api.Post(ctx, "/login", LoginRequest{Username: username, Password: password}, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	return &res, nil
}
