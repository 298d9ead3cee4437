package automation

import (
	"sort"
	"testing"
	"time"

	"channel_bot/internal/telegram/models"
)

func keepLatestPolicy() models.ReplyPolicy {
	return models.ReplyPolicy{
		Enabled:            true,
		Mode:               models.ReplyKeepLatest,
		TimeLimitMinutes:   60,
		MaxReplies:         3,
		IgnoreAdminReplies: false,
	}
}

func TestReplyTrackerKeepLatest(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	now := time.Now()
	root := now.Add(-time.Minute)

	if got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, SentAt: now}, root, now); got != nil {
		t.Fatalf("first reply: expected nothing to delete, got %v", got)
	}

	got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 11, SentAt: now}, root, now)
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("expected [10], got %v", got)
	}

	got = tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 12, SentAt: now}, root, now)
	if len(got) != 1 || got[0] != 11 {
		t.Fatalf("expected [11], got %v", got)
	}
}

func TestReplyTrackerKeepLatestAdminExempt(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	policy.IgnoreAdminReplies = true
	now := time.Now()
	root := now.Add(-time.Minute)

	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, IsAdmin: true, SentAt: now}, root, now)
	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 11, SentAt: now}, root, now)

	// 管理员回复 10 被豁免，普通回复 11 被清理
	got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 12, SentAt: now}, root, now)
	if len(got) != 1 || got[0] != 11 {
		t.Fatalf("expected [11], got %v", got)
	}

	// 豁免记录持续留在队列且不会被后续轮次标记
	got = tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 13, SentAt: now}, root, now)
	if len(got) != 1 || got[0] != 12 {
		t.Fatalf("expected [12], got %v", got)
	}
}

func TestReplyTrackerDeleteAfterTime(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	policy.Mode = models.ReplyDeleteAfterTime
	policy.TimeLimitMinutes = 30

	base := time.Now()
	rootSentAt := base.Add(-45 * time.Minute)

	// 根消息已超龄：新回复自身立即被标记
	got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, SentAt: base}, rootSentAt, base)
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("expected [10] for stale root, got %v", got)
	}

	// 根消息未超龄：旧回复按自身年龄评估
	freshRoot := base.Add(-5 * time.Minute)
	tracker.Track(policy, 100, 2, ReplyRecord{MessageID: 20, SentAt: base.Add(-40 * time.Minute)}, freshRoot, base.Add(-40*time.Minute))

	got = tracker.Track(policy, 100, 2, ReplyRecord{MessageID: 21, SentAt: base}, freshRoot, base)
	if len(got) != 1 || got[0] != 20 {
		t.Fatalf("expected [20] for aged reply, got %v", got)
	}
}

func TestReplyTrackerDeleteIfCountGtN(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	policy.Mode = models.ReplyDeleteIfCountGtN
	policy.MaxReplies = 2
	now := time.Now()
	root := now.Add(-time.Minute)

	if got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, SentAt: now}, root, now); got != nil {
		t.Fatalf("expected no deletions, got %v", got)
	}
	if got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 11, SentAt: now}, root, now); got != nil {
		t.Fatalf("expected no deletions, got %v", got)
	}

	// 第三条超出上限：最旧的 10 被标记
	got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 12, SentAt: now}, root, now)
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("expected [10], got %v", got)
	}
}

func TestReplyTrackerCountModeAdminNotCounted(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	policy.Mode = models.ReplyDeleteIfCountGtN
	policy.MaxReplies = 2
	policy.IgnoreAdminReplies = true
	now := time.Now()
	root := now.Add(-time.Minute)

	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, IsAdmin: true, SentAt: now}, root, now)
	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 11, SentAt: now}, root, now)

	// 管理员回复不计数：两条普通回复仍在上限内
	if got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 12, SentAt: now}, root, now); got != nil {
		t.Fatalf("expected no deletions, got %v", got)
	}

	got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 13, SentAt: now}, root, now)
	if len(got) != 1 || got[0] != 11 {
		t.Fatalf("expected [11], got %v", got)
	}
}

func TestReplyTrackerThreadsIsolated(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	now := time.Now()
	root := now.Add(-time.Minute)

	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, SentAt: now}, root, now)

	// 不同根消息的回复互不影响
	if got := tracker.Track(policy, 100, 2, ReplyRecord{MessageID: 11, SentAt: now}, root, now); got != nil {
		t.Fatalf("expected no deletions across threads, got %v", got)
	}
	if got := tracker.Track(policy, 200, 1, ReplyRecord{MessageID: 12, SentAt: now}, root, now); got != nil {
		t.Fatalf("expected no deletions across channels, got %v", got)
	}
}

func TestReplyTrackerTimeModeMarksMultiple(t *testing.T) {
	tracker := NewReplyTracker()
	policy := keepLatestPolicy()
	policy.Mode = models.ReplyDeleteAfterTime
	policy.TimeLimitMinutes = 10

	base := time.Now()
	freshRoot := base.Add(-time.Minute)

	old := base.Add(-30 * time.Minute)
	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 10, SentAt: old}, freshRoot, old)
	tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 11, SentAt: old}, freshRoot, old)

	got := tracker.Track(policy, 100, 1, ReplyRecord{MessageID: 12, SentAt: base}, freshRoot, base)
	sort.Ints(got)
	if len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Fatalf("expected [10 11], got %v", got)
	}
}
