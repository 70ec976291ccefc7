package google

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reviewhub/config"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/infra/httpx"

	"github.com/pkg/errors"
)

const defaultDirectoryURL = "https://mybusiness.googleapis.com/v4"

// starRatings maps the directory API's rating enum onto numeric stars.
// Anything else (including STAR_RATING_UNSPECIFIED) maps to 0.
var starRatings = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// directoryClient implements service.DirectoryService against the Google
// Business Profile API.
type directoryClient struct {
	baseURL string
	client  *httpx.Client
}

// NewDirectoryService is the constructor for the Google directory client.
func NewDirectoryService(cfg *config.Config, logger *slog.Logger) service.DirectoryService {
	baseURL := defaultDirectoryURL
	if cfg.GoogleOAuth != nil && cfg.GoogleOAuth.DirectoryURL != "" {
		baseURL = strings.TrimSuffix(cfg.GoogleOAuth.DirectoryURL, "/")
	}

	var directoryProfile *config.FetchProfile
	if cfg.Fetch != nil {
		directoryProfile = cfg.Fetch.Directory
	}

	return &directoryClient{
		baseURL: baseURL,
		client:  httpx.NewClient(httpx.FromConfig(directoryProfile), logger),
	}
}

type accountDTO struct {
	Name        string `json:"name"`
	AccountName string `json:"accountName"`
	Email       string `json:"email"`
}

type accountListDTO struct {
	Accounts      []accountDTO `json:"accounts"`
	NextPageToken string       `json:"nextPageToken"`
}

func (d *directoryClient) ListAccounts(ctx context.Context, accessToken string) ([]*service.RemoteAccount, error) {
	var accounts []*service.RemoteAccount

	pageToken := ""
	for {
		body, found, err := d.get(ctx, accessToken, "/accounts", pageToken)
		if err != nil {
			return nil, err
		}
		if !found {
			return accounts, nil
		}

		var page accountListDTO
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, "failed to decode accounts response")
		}

		for _, dto := range page.Accounts {
			if dto.Name == "" {
				continue
			}
			accounts = append(accounts, &service.RemoteAccount{
				Name:        dto.Name,
				AccountID:   resourceID(dto.Name),
				DisplayName: dto.AccountName,
				Email:       dto.Email,
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return accounts, nil
		}
	}
}

type locationDTO struct {
	Name         string `json:"name"`
	LocationName string `json:"locationName"`
	Title        string `json:"title"`
}

type locationListDTO struct {
	Locations     []locationDTO `json:"locations"`
	NextPageToken string        `json:"nextPageToken"`
}

func (d *directoryClient) ListLocations(ctx context.Context, accessToken, accountName string) ([]*service.RemoteLocation, error) {
	var locations []*service.RemoteLocation

	pageToken := ""
	for {
		body, found, err := d.get(ctx, accessToken, "/"+accountName+"/locations", pageToken)
		if err != nil {
			return nil, err
		}
		if !found {
			return locations, nil
		}

		var page locationListDTO
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, "failed to decode locations response")
		}

		for _, dto := range page.Locations {
			if dto.Name == "" {
				continue
			}
			displayName := dto.LocationName
			if displayName == "" {
				displayName = dto.Title
			}
			locations = append(locations, &service.RemoteLocation{
				Name:        dto.Name,
				LocationID:  resourceID(dto.Name),
				DisplayName: displayName,
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return locations, nil
		}
	}
}

type reviewDTO struct {
	Name       string `json:"name"`
	ReviewID   string `json:"reviewId"`
	StarRating string `json:"starRating"`
	Comment    string `json:"comment"`
	Reviewer   struct {
		DisplayName string `json:"displayName"`
	} `json:"reviewer"`
	CreateTime time.Time `json:"createTime"`
}

type reviewListDTO struct {
	Reviews       []reviewDTO `json:"reviews"`
	NextPageToken string      `json:"nextPageToken"`
}

func (d *directoryClient) ListReviews(ctx context.Context, accessToken, locationName string) ([]*service.RemoteReview, error) {
	var reviews []*service.RemoteReview

	pageToken := ""
	for {
		body, found, err := d.get(ctx, accessToken, "/"+locationName+"/reviews", pageToken)
		if err != nil {
			return nil, err
		}
		if !found {
			return reviews, nil
		}

		var page reviewListDTO
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, "failed to decode reviews response")
		}

		for _, dto := range page.Reviews {
			externalID := dto.Name
			if externalID == "" && dto.ReviewID != "" {
				externalID = locationName + "/reviews/" + dto.ReviewID
			}
			if externalID == "" {
				continue
			}

			createdAt := dto.CreateTime
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}

			reviews = append(reviews, &service.RemoteReview{
				ExternalID:   externalID,
				Rating:       starRatings[dto.StarRating],
				Text:         dto.Comment,
				ReviewerName: dto.Reviewer.DisplayName,
				CreatedAt:    createdAt,
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return reviews, nil
		}
	}
}

// PutReply upserts the business reply on a review.
func (d *directoryClient) PutReply(ctx context.Context, accessToken, reviewName, comment string) error {
	payload, err := json.Marshal(map[string]string{"comment": comment})
	if err != nil {
		return errors.Wrap(err, "failed to marshal reply payload")
	}

	endpoint := d.baseURL + "/" + reviewName + "/reply"
	resp, err := d.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Content-Type", "application/json")

		return req, nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to call reply endpoint")
	}

	return d.checkStatus(resp.StatusCode, "reply endpoint")
}

// get performs one authorized page fetch. found is false on a 404, which the
// directory API uses for "resource has no listings".
func (d *directoryClient) get(ctx context.Context, accessToken, path, pageToken string) (body []byte, found bool, err error) {
	endpoint := d.baseURL + path
	if pageToken != "" {
		endpoint += "?pageToken=" + url.QueryEscape(pageToken)
	}

	resp, err := d.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		return req, nil
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to call directory endpoint %s", path)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if err := d.checkStatus(resp.StatusCode, "directory endpoint "+path); err != nil {
		return nil, false, err
	}

	return resp.Body, true, nil
}

func (d *directoryClient) checkStatus(statusCode int, what string) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return errors.Wrapf(service.ErrGrantRejected, "%s returned %d", what, statusCode)
	default:
		return errors.Errorf("%s returned %d", what, statusCode)
	}
}

// resourceID extracts the trailing segment of a resource name, e.g.
// "accounts/123" -> "123".
func resourceID(name string) string {
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		return name[idx+1:]
	}

	return name
}
