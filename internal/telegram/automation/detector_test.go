package automation

import (
	"testing"
	"time"

	"channel_bot/internal/telegram/models"
)

func textPolicy() models.DuplicatePolicy {
	return models.DuplicatePolicy{
		Enabled:     true,
		Criteria:    []models.DuplicateCriterion{models.CriterionText},
		Scope:       models.ScopeChannel,
		WindowType:  models.WindowMessages,
		WindowValue: 20,
		Strategy:    models.StrategyDeleteNew,
	}
}

func TestDetectorDeleteNew(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	now := time.Now()

	first := Record{ChannelID: 100, MessageID: 1, Text: "hello world", SentAt: now}
	if got := d.Process(policy, 1, first, now); got.Decision != DecisionKeep {
		t.Fatalf("first message: expected Keep, got %v", got.Decision)
	}

	dup := Record{ChannelID: 100, MessageID: 2, Text: "hello world", SentAt: now}
	result := d.Process(policy, 1, dup, now)
	if result.Decision != DecisionReject {
		t.Fatalf("duplicate: expected Reject, got %v", result.Decision)
	}
	if result.Matched.MessageID != 1 {
		t.Fatalf("expected match against message 1, got %d", result.Matched.MessageID)
	}
	if result.Criterion != models.CriterionText {
		t.Fatalf("unexpected criterion: %s", result.Criterion)
	}

	// 被拒绝的消息不得进入窗口：第三条重复仍然命中原始消息
	third := Record{ChannelID: 100, MessageID: 3, Text: "hello world", SentAt: now}
	result = d.Process(policy, 1, third, now)
	if result.Decision != DecisionReject || result.Matched.MessageID != 1 {
		t.Fatalf("expected reject against message 1, got %v / %d", result.Decision, result.Matched.MessageID)
	}
}

func TestDetectorDeleteOld(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.Strategy = models.StrategyDeleteOld
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "dup", SentAt: now}, now)

	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 2, Text: "dup", SentAt: now}, now)
	if result.Decision != DecisionKeepReplaced {
		t.Fatalf("expected KeepReplaced, got %v", result.Decision)
	}
	if result.Matched.MessageID != 1 {
		t.Fatalf("expected old message 1 to be replaced, got %d", result.Matched.MessageID)
	}

	// 旧记录已移除，新记录在窗口内：下一条重复命中消息 2
	result = d.Process(policy, 1, Record{ChannelID: 100, MessageID: 3, Text: "dup", SentAt: now}, now)
	if result.Decision != DecisionKeepReplaced || result.Matched.MessageID != 2 {
		t.Fatalf("expected replace of message 2, got %v / %d", result.Decision, result.Matched.MessageID)
	}
}

func TestDetectorDisabled(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.Enabled = false
	now := time.Now()

	for i := 1; i <= 3; i++ {
		rec := Record{ChannelID: 100, MessageID: i, Text: "same", SentAt: now}
		if got := d.Process(policy, 1, rec, now); got.Decision != DecisionKeep {
			t.Fatalf("disabled policy: expected Keep for message %d, got %v", i, got.Decision)
		}
	}

	// 关闭期间的消息仍被记录：开启后立即可命中
	policy.Enabled = true
	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 4, Text: "same", SentAt: now}, now)
	if result.Decision != DecisionReject {
		t.Fatalf("expected Reject after enabling, got %v", result.Decision)
	}
}

func TestDetectorChannelScopeIsolation(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "same", SentAt: now}, now)

	// channel 范围下，另一个频道的相同文本不算重复
	result := d.Process(policy, 1, Record{ChannelID: 200, MessageID: 2, Text: "same", SentAt: now}, now)
	if result.Decision != DecisionKeep {
		t.Fatalf("expected Keep across channels, got %v", result.Decision)
	}
}

func TestDetectorGlobalScope(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.Scope = models.ScopeGlobal
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "same", SentAt: now}, now)

	// global 范围下，同一 owner 的其他频道也参与比对
	result := d.Process(policy, 1, Record{ChannelID: 200, MessageID: 2, Text: "same", SentAt: now}, now)
	if result.Decision != DecisionReject {
		t.Fatalf("expected Reject in global scope, got %v", result.Decision)
	}
	if result.Matched.ChannelID != 100 {
		t.Fatalf("expected match from channel 100, got %d", result.Matched.ChannelID)
	}

	// 不同 owner 互不影响
	result = d.Process(policy, 2, Record{ChannelID: 300, MessageID: 3, Text: "same", SentAt: now}, now)
	if result.Decision != DecisionKeep {
		t.Fatalf("expected Keep for different owner, got %v", result.Decision)
	}
}

func TestDetectorMessagesWindow(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.WindowValue = 2
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "old", SentAt: now}, now)
	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 2, Text: "filler one", SentAt: now}, now)
	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 3, Text: "filler two", SentAt: now}, now)

	// 消息 1 已滑出 2 条窗口，不再构成重复
	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 4, Text: "old", SentAt: now}, now)
	if result.Decision != DecisionKeep {
		t.Fatalf("expected Keep after window slide, got %v", result.Decision)
	}
}

func TestDetectorMinutesWindow(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.WindowType = models.WindowMinutes
	policy.WindowValue = 10
	base := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "same", SentAt: base}, base)

	// 窗口内重复
	later := base.Add(5 * time.Minute)
	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 2, Text: "same", SentAt: later}, later)
	if result.Decision != DecisionReject {
		t.Fatalf("expected Reject within time window, got %v", result.Decision)
	}

	// 超龄记录被裁剪后不再命中
	expired := base.Add(30 * time.Minute)
	result = d.Process(policy, 1, Record{ChannelID: 100, MessageID: 3, Text: "same", SentAt: expired}, expired)
	if result.Decision != DecisionKeep {
		t.Fatalf("expected Keep after expiry, got %v", result.Decision)
	}
}

func TestDetectorCriteriaOrder(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.Criteria = []models.DuplicateCriterion{models.CriterionMediaFile, models.CriterionText}
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "same", MediaFileID: "file-a", SentAt: now}, now)

	// 两个条件同时命中时，报告的是配置中靠前的那个
	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 2, Text: "same", MediaFileID: "file-a", SentAt: now}, now)
	if result.Decision != DecisionReject {
		t.Fatalf("expected Reject, got %v", result.Decision)
	}
	if result.Criterion != models.CriterionMediaFile {
		t.Fatalf("expected media_file_id to win, got %s", result.Criterion)
	}
}

func TestDetectorFuzzyText(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.Criteria = []models.DuplicateCriterion{models.CriterionFuzzyText}
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, Text: "breaking news: markets rally today", SentAt: now}, now)

	// 一字之差，相似度超过阈值
	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 2, Text: "breaking news: markets rally today!", SentAt: now}, now)
	if result.Decision != DecisionReject {
		t.Fatalf("expected Reject for near-identical text, got %v", result.Decision)
	}

	// 完全不同的文本不命中
	result = d.Process(policy, 1, Record{ChannelID: 100, MessageID: 3, Text: "weather forecast for tomorrow", SentAt: now}, now)
	if result.Decision != DecisionKeep {
		t.Fatalf("expected Keep for unrelated text, got %v", result.Decision)
	}
}

func TestDetectorEmptyFieldsNeverMatch(t *testing.T) {
	d := NewDetector()
	policy := textPolicy()
	policy.Criteria = []models.DuplicateCriterion{
		models.CriterionText, models.CriterionCaption, models.CriterionMediaFile,
	}
	now := time.Now()

	d.Process(policy, 1, Record{ChannelID: 100, MessageID: 1, SentAt: now}, now)

	// 两侧字段均为空时不构成重复
	result := d.Process(policy, 1, Record{ChannelID: 100, MessageID: 2, SentAt: now}, now)
	if result.Decision != DecisionKeep {
		t.Fatalf("expected Keep for empty fields, got %v", result.Decision)
	}
}
