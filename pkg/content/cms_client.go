package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/gofiber/fiber/v2"
)

const maxArticlesPageSize = 100

type (
	CMSClient interface {
		ListArticles(ctx context.Context, page, pageSize int, search string) (domain.ArticlePage, error)
	}

	CMSConfig struct {
		BaseURL  string
		Token    string
		CacheTTL time.Duration
	}

	strapiClient struct {
		cfg        CMSConfig
		httpClient *http.Client
		cache      fiber.Storage
	}
)

func LoadCMSConfig() CMSConfig {
	return CMSConfig{
		BaseURL:  utils.GetConfig("CMS_URL"),
		Token:    utils.GetConfig("CMS_TOKEN"),
		CacheTTL: time.Duration(utils.GetConfigInt("CMS_CACHE_TTL", 60)) * time.Second,
	}
}

// NewCMSClient reads articles from a Strapi-style REST API. cache may be
// nil, in which case every call goes to the CMS.
func NewCMSClient(cfg CMSConfig, cache fiber.Storage) CMSClient {
	return &strapiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
	}
}

func articlesQuery(page, pageSize int, search string) url.Values {
	q := url.Values{}
	q.Set("pagination[page]", strconv.Itoa(page))
	q.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	q.Set("sort[0]", "publishedAt:desc")
	q.Set("populate", "*")
	if search != "" {
		q.Set("filters[$or][0][title][$containsi]", search)
		q.Set("filters[$or][1][description][$containsi]", search)
	}
	return q
}

func (c *strapiClient) ListArticles(ctx context.Context, page, pageSize int, search string) (domain.ArticlePage, error) {
	if c.cfg.BaseURL == "" {
		return domain.ArticlePage{}, domain.ErrCMSNotConfigured
	}
	if page < 1 || pageSize < 1 || pageSize > maxArticlesPageSize {
		return domain.ArticlePage{}, domain.ErrInvalidArticlesPage
	}

	query := articlesQuery(page, pageSize, strings.TrimSpace(search)).Encode()
	cacheKey := "articles:" + query

	if c.cache != nil {
		if raw, err := c.cache.Get(cacheKey); err == nil && len(raw) > 0 {
			var cached domain.ArticlePage
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if err != nil {
			logging.LogError("cms_cache_get", err, nil)
		}
	}

	endpoint := fmt.Sprintf("%s/api/articles?%s", strings.TrimRight(c.cfg.BaseURL, "/"), query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ArticlePage{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ArticlePage{}, domain.NewExternalServiceError("cms", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ArticlePage{}, domain.NewExternalServiceError("cms", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ArticlePage{}, domain.NewExternalServiceError("cms", fmt.Errorf("%s - %s", resp.Status, truncate(body, 512)))
	}

	var result domain.ArticlePage
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.ArticlePage{}, domain.NewExternalServiceError("cms", err)
	}
	if result.Data == nil {
		result.Data = []json.RawMessage{}
	}

	if c.cache != nil && c.cfg.CacheTTL > 0 {
		if raw, err := json.Marshal(result); err == nil {
			if err := c.cache.Set(cacheKey, raw, c.cfg.CacheTTL); err != nil {
				logging.LogError("cms_cache_set", err, nil)
			}
		}
	}
	return result, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
