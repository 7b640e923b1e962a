package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gigbook/models"
	"gigbook/utils"
)

const defaultLockTTL = time.Minute

func offeringLockKey(ref models.OfferingRef) string {
	return "booking:offering:" + ref.Key()
}

func paymentLockKey(paymentID string) string {
	return "booking:payment:" + paymentID
}

func (s *DefaultEscrowService) lock(ctx context.Context, key string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	release, err := s.Locker.Acquire(ctx, key, ttl)
	if errors.Is(err, utils.ErrLockNotAcquired) {
		return nil, wrapError(KindBusy, err, "another request is working on this resource, retry shortly")
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return release, nil
}
