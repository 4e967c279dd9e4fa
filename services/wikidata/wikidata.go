package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hive/models"
	"hive/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	apiURL = "https://www.wikidata.org/w/api.php"
	// WikiData requires a descriptive User-Agent.
	userAgent  = "HivePlatform/1.0 (https://hive.example)"
	maxResults = 50
	cachePrefix = "wikidata:"
)

// WikiDataService resolves tag suggestions against the WikiData entity API.
type WikiDataService interface {
	// SearchEntities looks up entity suggestions for a query, serving
	// repeated lookups from the cache.
	SearchEntities(ctx context.Context, query, language string, limit int) ([]models.TagEntity, error)
}

// DefaultWikiDataService caches lookups in Redis with a configurable TTL.
type DefaultWikiDataService struct {
	Client   *http.Client
	Cache    *redis.Client
	CacheTTL time.Duration
}

// NewWikiDataService constructs the lookup service.
func NewWikiDataService(cache *redis.Client, cacheTTL time.Duration) *DefaultWikiDataService {
	return &DefaultWikiDataService{
		Client:   &http.Client{Timeout: 10 * time.Second},
		Cache:    cache,
		CacheTTL: cacheTTL,
	}
}

type searchResponse struct {
	Search []struct {
		ID          string   `json:"id"`
		Label       string   `json:"label"`
		Description string   `json:"description"`
		Aliases     []string `json:"aliases"`
	} `json:"search"`
}

func cacheKey(query, language string) string {
	return cachePrefix + strings.ToLower(strings.TrimSpace(query)) + ":" + language
}

// SearchEntities queries wbsearchentities. Cache errors degrade to a live
// lookup rather than failing the request.
func (s *DefaultWikiDataService) SearchEntities(ctx context.Context, query, language string, limit int) ([]models.TagEntity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.TagEntity{}, nil
	}
	if language == "" {
		language = "en"
	}
	if limit <= 0 || limit > maxResults {
		limit = 10
	}

	logger := utils.GetLogger().With(zap.String("query", query))
	key := cacheKey(query, language)

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, key).Result()
		if err == nil {
			var entities []models.TagEntity
			if err := json.Unmarshal([]byte(cached), &entities); err == nil {
				logger.Debug("wikidata cache hit")
				return entities, nil
			}
		} else if err != redis.Nil {
			logger.Warn("wikidata cache lookup failed", zap.Error(err))
		}
	}

	entities, err := s.fetch(ctx, query, language, limit)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if payload, err := json.Marshal(entities); err == nil {
			if err := s.Cache.Set(ctx, key, payload, s.CacheTTL).Err(); err != nil {
				logger.Warn("wikidata cache store failed", zap.Error(err))
			}
		}
	}

	logger.Info("wikidata lookup", zap.Int("results", len(entities)))
	return entities, nil
}

func (s *DefaultWikiDataService) fetch(ctx context.Context, query, language string, limit int) ([]models.TagEntity, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", query)
	params.Set("language", language)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")
	params.Set("type", "item")
	params.Set("strictlanguage", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build wikidata request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikidata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikidata returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode wikidata response: %w", err)
	}

	entities := make([]models.TagEntity, 0, len(parsed.Search))
	for _, item := range parsed.Search {
		entities = append(entities, models.TagEntity{
			Label:       item.Label,
			EntityID:    item.ID,
			Description: item.Description,
			Aliases:     item.Aliases,
		})
	}
	return entities, nil
}
