package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Invoice caching
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error)
	SetInvoice(ctx context.Context, invoice *models.Invoice, ttl time.Duration) error
	DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error

	// Statistics caching
	GetStatistics(ctx context.Context, key string) (map[string]interface{}, error)
	SetStatistics(ctx context.Context, key string, stats map[string]interface{}, ttl time.Duration) error
	InvalidateStatistics(ctx context.Context) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// style addresses as well as bare host:port.
	parsedAddr := addr
	if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
		parsedAddr = hostPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func invoiceKey(invoiceID uuid.UUID) string {
	return fmt.Sprintf("invoice:%s", invoiceID)
}

func statisticsKey(key string) string {
	return fmt.Sprintf("statistics:%s", key)
}

func (s *redisCacheService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	data, err := s.client.Get(ctx, invoiceKey(invoiceID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	invoice := &models.Invoice{}
	if err := json.Unmarshal([]byte(data), invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *redisCacheService) SetInvoice(ctx context.Context, invoice *models.Invoice, ttl time.Duration) error {
	data, err := json.Marshal(invoice)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, invoiceKey(invoice.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return s.client.Del(ctx, invoiceKey(invoiceID)).Err()
}

func (s *redisCacheService) GetStatistics(ctx context.Context, key string) (map[string]interface{}, error) {
	data, err := s.client.Get(ctx, statisticsKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stats := map[string]interface{}{}
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *redisCacheService) SetStatistics(ctx context.Context, key string, stats map[string]interface{}, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statisticsKey(key), data, ttl).Err()
}

func (s *redisCacheService) InvalidateStatistics(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, statisticsKey("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}

func (s *redisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
