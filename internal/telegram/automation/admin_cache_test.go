package automation

import (
	"context"
	"fmt"
	"testing"
)

type fakeChecker struct {
	admins map[int64]bool
	calls  int
	fail   bool
}

func (f *fakeChecker) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	f.calls++
	if f.fail {
		return false, fmt.Errorf("lookup failed")
	}
	return f.admins[userID], nil
}

func TestAdminCacheMemoizes(t *testing.T) {
	checker := &fakeChecker{admins: map[int64]bool{7: true}}
	cache := NewAdminCache(checker)
	ctx := context.Background()

	if !cache.IsAdmin(ctx, 100, 7) {
		t.Fatalf("expected user 7 to be admin")
	}
	if cache.IsAdmin(ctx, 100, 8) {
		t.Fatalf("expected user 8 to not be admin")
	}

	// 重复查询命中缓存，不再触发远端调用
	cache.IsAdmin(ctx, 100, 7)
	cache.IsAdmin(ctx, 100, 8)
	if checker.calls != 2 {
		t.Fatalf("expected 2 lookups, got %d", checker.calls)
	}

	// 不同频道是独立的 key
	cache.IsAdmin(ctx, 200, 7)
	if checker.calls != 3 {
		t.Fatalf("expected 3 lookups, got %d", checker.calls)
	}
}

func TestAdminCacheLookupFailure(t *testing.T) {
	checker := &fakeChecker{fail: true}
	cache := NewAdminCache(checker)
	ctx := context.Background()

	if cache.IsAdmin(ctx, 100, 7) {
		t.Fatalf("expected false on lookup failure")
	}

	// 失败结果不缓存，下次重试
	checker.fail = false
	checker.admins = map[int64]bool{7: true}
	if !cache.IsAdmin(ctx, 100, 7) {
		t.Fatalf("expected retry to succeed")
	}
}
