package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalrepo "CryptoBrain/internal/repository"
	"CryptoBrain/pkg/cache"
	"CryptoBrain/pkg/config"
	"CryptoBrain/pkg/logger"
)

func TestDisabledInfrastructure(t *testing.T) {
	cfg := config.Default()
	log := logger.Nop()

	c, err := ProvideCache(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)
	defer c.Close()

	producer, err := ProvideKafkaProducer(cfg, log)
	require.NoError(t, err)
	assert.Nil(t, producer)

	consumer, err := ProvideKafkaConsumer(cfg, log)
	require.NoError(t, err)
	assert.Nil(t, consumer)

	assert.Equal(t, internalrepo.NopPublisher{}, ProvideEventPublisher(cfg, producer))
}

func TestClosersWithoutKafka(t *testing.T) {
	closers := ProvideClosers(nil, cache.NewMemoryCache(), internalrepo.NopPublisher{}, nil, logger.Nop())
	names := make([]string, len(closers))
	for i, c := range closers {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"clickhouse", "cache"}, names)
}
