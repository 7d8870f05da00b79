package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/retail-ledger/internal/application/payment"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

var _ payment.SubmissionLocker = (*SubmissionLocker)(nil)

const keyPrefix = "ledger:payment:"

// SubmissionLocker bloqueo best-effort por huella de pago sobre Redis (redislock).
// Si otro envío retiene la clave durante todo el TTL se continúa sin bloqueo: la similitud
// y los índices únicos siguen protegiendo. Un fallo de Redis se devuelve como error.
type SubmissionLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

// NewSubmissionLocker construye el bloqueo. ttl es a la vez la vida del bloqueo y la espera máxima.
func NewSubmissionLocker(client redislock.RedisClient, ttl time.Duration, log *logger.Logger) *SubmissionLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SubmissionLocker{
		locker: redislock.New(client),
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		log:    logger.OrNop(log).Named("submission_lock"),
	}
}

// Acquire espera el bloqueo de la huella y devuelve la función que lo libera.
func (l *SubmissionLocker) Acquire(ctx context.Context, fingerprint string) (func(), error) {
	key := Key(fingerprint)

	waitCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	lock, err := l.locker.Obtain(waitCtx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, redislock.ErrNotObtained):
		// Redis respondió pero otro envío retuvo la clave todo el TTL.
		l.log.Warn().Str("key", key).Msg("no se obtuvo el bloqueo de envío; se continúa sin bloqueo")
		return func() {}, nil
	default:
		return nil, fmt.Errorf("obtain submission lock: %w", err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("error liberando bloqueo de envío")
		}
	}, nil
}

// Key clave Redis de una huella (sha1 para acotar el largo).
func Key(fingerprint string) string {
	sum := sha1.Sum([]byte(fingerprint))
	return keyPrefix + hex.EncodeToString(sum[:])
}
