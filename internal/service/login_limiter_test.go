package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"microblog/internal/model"
)

func TestLoginLimiter_Commands(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	limiter := NewLoginLimiter(rdb, 2, time.Minute)
	ctx := context.Background()
	key := loginAttemptsKeyPrefix + "alice"

	// First failure opens the window
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	limiter.RecordFailure(ctx, "alice")

	// Later failures do not extend it
	mock.ExpectIncr(key).SetVal(2)
	limiter.RecordFailure(ctx, "alice")

	mock.ExpectGet(key).SetVal("2")
	if err := limiter.Allow(ctx, "alice"); !errors.Is(err, model.ErrTooManyAttempts) {
		t.Errorf("Allow() = %v, want %v", err, model.ErrTooManyAttempts)
	}

	mock.ExpectDel(key).SetVal(1)
	limiter.Reset(ctx, "alice")

	mock.ExpectGet(key).RedisNil()
	if err := limiter.Allow(ctx, "alice"); err != nil {
		t.Errorf("Allow() after reset = %v, want nil", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLoginLimiter_RedisErrorsAllow(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	limiter := NewLoginLimiter(rdb, 1, time.Minute)
	key := loginAttemptsKeyPrefix + "bob"

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	if err := limiter.Allow(context.Background(), "bob"); err != nil {
		t.Errorf("Allow() = %v, want nil when redis fails", err)
	}

	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))
	limiter.RecordFailure(context.Background(), "bob")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
