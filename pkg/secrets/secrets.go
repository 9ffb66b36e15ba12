// Package secrets reads and caches values from AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/serrors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// Store caches secrets by ID for the life of the process.
type Store struct {
	api API

	mu      sync.RWMutex
	secrets map[string]any
}

// New builds a store over api.
func New(api API) *Store {
	return &Store{api: api, secrets: map[string]any{}}
}

// NewFromRegion builds a store with the default AWS credential chain.
func NewFromRegion(ctx context.Context, region string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}

	return New(secretsmanager.NewFromConfig(cfg)), nil
}

func (s *Store) cached(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.secrets[id]

	return v, ok
}

// Get returns secret id, parsed as JSON when possible and the raw string
// otherwise. refresh bypasses the cache.
func (s *Store) Get(ctx context.Context, id string, refresh bool) (any, error) {
	if !refresh {
		if v, ok := s.cached(id); ok {
			return v, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !refresh {
		if v, ok := s.secrets[id]; ok {
			return v, nil
		}
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return nil, serrors.With(serrors.ErrNotFound, "secret %s has no string value", id)
	}

	var value any
	if err := json.Unmarshal([]byte(*out.SecretString), &value); err != nil {
		value = *out.SecretString
	}
	s.secrets[id] = value
	logger.Debug(ctx, "secret loaded", zap.String("id", id), zap.Bool("refresh", refresh))

	return value, nil
}

// Credentials returns a secret that must be a JSON object of strings, as
// database credentials are stored.
func (s *Store) Credentials(ctx context.Context, id string) (map[string]string, error) {
	v, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, serrors.With(serrors.ErrBadRequest, "secret %s is not a json object", id)
	}

	out := make(map[string]string, len(obj))
	for k, val := range obj {
		switch typed := val.(type) {
		case string:
			out[k] = typed
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(typed)
		}
	}

	return out, nil
}
