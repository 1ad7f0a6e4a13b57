// Package redis caches dependency lookups so repeated validate calls against
// the same project do not hammer MongoDB.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/insightloop/insightloop/pkg/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	projectExistsKeyFormat = "lookup:project:%s"
	personaKeyFormat       = "lookup:persona:%s:%s"

	// DefaultLookupTTL keeps cache entries short-lived. Stale existence
	// answers only delay a validation finding by this much.
	DefaultLookupTTL = 30 * time.Second
)

type CachedLookupDeps struct {
	Client *redis.Client
	Next   domain.DependencyLookup
	TTL    time.Duration
}

// CachedLookup is a read-through decorator. Cache failures fall back to the
// wrapped lookup; the cache never makes an answer wrong, only occasionally
// slow.
type CachedLookup struct {
	client *redis.Client
	next   domain.DependencyLookup
	ttl    time.Duration
}

func NewCachedLookup(deps CachedLookupDeps) *CachedLookup {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}

	return &CachedLookup{
		client: deps.Client,
		next:   deps.Next,
		ttl:    ttl,
	}
}

func (c *CachedLookup) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	key := fmt.Sprintf(projectExistsKeyFormat, projectID)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached == "1", nil
	}

	if err != redis.Nil {
		log.Warn().Err(err).Str("project_id", projectID).Msg("Project lookup cache read failed")
	}

	exists, err := c.next.ProjectExists(ctx, projectID)
	if err != nil {
		return false, err
	}

	value := "0"
	if exists {
		value = "1"
	}

	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("project_id", projectID).Msg("Project lookup cache write failed")
	}

	return exists, nil
}

func (c *CachedLookup) PersonasExist(ctx context.Context, personaIDs []string, projectID string) (map[string]struct{}, error) {
	found := map[string]struct{}{}
	uncached := []string{}

	for _, personaID := range personaIDs {
		key := fmt.Sprintf(personaKeyFormat, projectID, personaID)

		cached, err := c.client.Get(ctx, key).Result()
		if err != nil {
			if err != redis.Nil {
				log.Warn().Err(err).Str("project_id", projectID).Msg("Persona lookup cache read failed")
			}

			uncached = append(uncached, personaID)
			continue
		}

		if cached == "1" {
			found[personaID] = struct{}{}
		}
	}

	if len(uncached) == 0 {
		return found, nil
	}

	resolved, err := c.next.PersonasExist(ctx, uncached, projectID)
	if err != nil {
		return nil, err
	}

	for _, personaID := range uncached {
		value := "0"

		if _, ok := resolved[personaID]; ok {
			found[personaID] = struct{}{}
			value = "1"
		}

		key := fmt.Sprintf(personaKeyFormat, projectID, personaID)
		if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("project_id", projectID).Msg("Persona lookup cache write failed")
		}
	}

	return found, nil
}
