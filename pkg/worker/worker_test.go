package worker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofrecom-tn/chatbot-admin/internal/extractor"
	"github.com/sofrecom-tn/chatbot-admin/internal/indexing"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/ingest"
	"github.com/sofrecom-tn/chatbot-admin/internal/store/memstore"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage/memory"
)

// Both the signal handler in main and the context monitor goroutine call
// Stop during shutdown; a second call must not panic on the stop channel.
func TestStopIsIdempotent(t *testing.T) {
	log := logger.NewNopLogger()
	pipe := ingest.NewPipeline(
		memstore.NewDocumentStore(),
		memory.NewStorage(),
		extractor.NewRegistry(log),
		indexing.NewMemoryGateway(),
		queue.NewMemoryQueue(),
		log,
		ingest.Config{},
	)
	w := NewIngestWorker(Config{RedisAddr: "localhost:6379"}, pipe, memory.NewStorage(), log)

	require.NotPanics(t, func() {
		require.NoError(t, w.Stop())
		require.NoError(t, w.Stop())
	})
}
