package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/numbering"
	"github.com/jhoicas/retail-ledger/internal/application/payment"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	infraredis "github.com/jhoicas/retail-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unisolatedRunner ejecuta fn sin aislamiento: dos envíos pueden pasar el chequeo de
// similitud antes de que cualquiera inserte, como dos transacciones READ COMMITTED.
type unisolatedRunner struct{ store *memory.Store }

func (r unisolatedRunner) Run(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	return fn(ctx, r.store.Repos())
}

// slowGuardPayments ensancha la ventana entre el chequeo de similitud y el insert.
type slowGuardPayments struct{ repository.PaymentRepository }

func (p slowGuardPayments) FindSimilar(ctx context.Context, q repository.SimilarPaymentQuery) (*entity.Payment, error) {
	found, err := p.PaymentRepository.FindSimilar(ctx, q)
	time.Sleep(30 * time.Millisecond)
	return found, err
}

type slowRunner struct{ unisolatedRunner }

func (r slowRunner) Run(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	return r.unisolatedRunner.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		repos.Payments = slowGuardPayments{repos.Payments}
		return fn(ctx, repos)
	})
}

func TestCreate_EnviosSimultaneosSerializadosPorRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	store.AddWarehouse(entity.Warehouse{ID: "wh-bog", CompanyID: "company-1", Code: "BOG", Name: "Bogotá"})

	locker := infraredis.NewSubmissionLocker(client, 2*time.Second, logger.Nop())
	svc := payment.NewUseCase(slowRunner{unisolatedRunner{store}}, store.Repos(),
		numbering.NewGenerator(logger.Nop()), locker, payment.DefaultGuardPolicy(), logger.Nop())

	// mismo envío repetido sin clave; los montos difieren dentro de la tolerancia
	amounts := []string{"25.00", "25.01"}
	results := make([]*dto.CreatePaymentResponse, len(amounts))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount string) {
			defer wg.Done()
			<-start
			res, err := svc.Create(context.Background(), "company-1", "user-1", dto.CreatePaymentRequest{
				WarehouseID:   "wh-bog",
				Direction:     "in",
				Date:          "2026-10-18",
				Amount:        decimal.RequireFromString(amount),
				PaymentModeID: "cash",
				UserID:        "customer-1",
			})
			if assert.NoError(t, err) {
				results[i] = res
			}
		}(i, amount)
	}
	close(start)
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, 1, store.PaymentCount(), "solo un envío llega a escribir")
	assert.Equal(t, results[0].PaymentID, results[1].PaymentID)
	assert.NotEqual(t, results[0].IsDuplicate, results[1].IsDuplicate)
	for _, res := range results {
		if res.IsDuplicate {
			assert.Equal(t, payment.ReasonSimilarity, res.DuplicateReason)
		}
	}
	assert.Empty(t, mr.Keys(), "los bloqueos se liberan")
}
