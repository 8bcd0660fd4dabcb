package cityinfo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/neexbeast/weather-dashboard/internal/config"
	"github.com/neexbeast/weather-dashboard/internal/provider"
)

// maxPhotos caps how many city photos are ever returned.
const maxPhotos = 5

// PhotoClient searches Unsplash for city photos.
type PhotoClient struct {
	apiKey   string
	endpoint string
	perPage  int
	provider *provider.Client
}

// NewPhotoClient constructs a PhotoClient from the photos config.
func NewPhotoClient(cfg config.PhotosConfig) *PhotoClient {
	perPage := cfg.PerPage
	if perPage <= 0 || perPage > maxPhotos {
		perPage = maxPhotos
	}
	return &PhotoClient{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/search/photos",
		perPage:  perPage,
		provider: provider.New("unsplash", nil),
	}
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// FetchCityPhotos returns up to five photo URLs in provider relevance order.
func (c *PhotoClient) FetchCityPhotos(ctx context.Context, city string) ([]string, error) {
	q := url.Values{}
	q.Set("query", city)
	q.Set("client_id", c.apiKey)
	q.Set("per_page", strconv.Itoa(c.perPage))

	var raw unsplashSearchResponse
	if err := c.provider.GetJSON(ctx, c.endpoint, q, &raw); err != nil {
		return nil, fmt.Errorf("unsplash search for %s: %w", city, err)
	}

	photos := make([]string, 0, len(raw.Results))
	for _, r := range raw.Results {
		if r.URLs.Regular == "" {
			continue
		}
		photos = append(photos, r.URLs.Regular)
		if len(photos) == c.perPage {
			break
		}
	}

	return photos, nil
}
