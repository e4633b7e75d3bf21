package audit

import (
	"context"
	"sync"

	"alertaja/internal/models"

	"go.uber.org/zap"
)

// historyStore SOS 历史持久化（读取失败必须返回错误）
type historyStore interface {
	LoadSOSHistory(ctx context.Context) ([]models.SOSRecord, error)
	SetSOSHistory(ctx context.Context, history []models.SOSRecord) error
}

// Log 本地 SOS 审计日志（最新在前，最多 MaxSOSHistory 条）
//
// 每次 Add/List 都重新读取存储。读取失败时使用上次成功读取的缓存；
// 从未成功读取过时新记录只留在内存（pending），不写存储。
// 写入失败的记录同样留在 pending，下次写入时一起补上。
type Log struct {
	mu      sync.Mutex
	store   historyStore
	logger  *zap.Logger
	records []models.SOSRecord // 上次成功读取或写入的持久化历史
	loaded  bool
	pending []models.SOSRecord // 尚未持久化的记录（最新在前）
}

// New 创建审计日志
func New(store historyStore, logger *zap.Logger) *Log {
	return &Log{
		store:  store,
		logger: logger.Named("audit"),
	}
}

// refresh 重新读取存储，返回是否有可信的持久化历史（调用方持锁）
func (l *Log) refresh(ctx context.Context) bool {
	stored, err := l.store.LoadSOSHistory(ctx)
	if err != nil {
		l.logger.Warn("Failed to read SOS history",
			zap.Bool("using_cache", l.loaded),
			zap.Error(err),
		)
		return l.loaded
	}

	l.records = capHistory(stored)
	l.loaded = true
	return true
}

// merged pending 在前，持久化历史在后（调用方持锁）
func (l *Log) merged() []models.SOSRecord {
	out := make([]models.SOSRecord, 0, len(l.pending)+len(l.records))
	out = append(out, l.pending...)
	out = append(out, l.records...)
	return capHistory(out)
}

// Add 追加一条记录：插到最前并截断到上限，写入失败只记录日志
func (l *Log) Add(ctx context.Context, record models.SOSRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = capHistory(append([]models.SOSRecord{record}, l.pending...))

	// 1. 追加前重新读取，不能用未读到的历史覆盖存储
	if !l.refresh(ctx) {
		l.logger.Warn("SOS history unavailable, keeping record in memory",
			zap.String("record_id", record.ID),
			zap.Int("pending", len(l.pending)),
		)
		return
	}

	// 2. 写入
	next := l.merged()
	if err := l.store.SetSOSHistory(ctx, next); err != nil {
		l.logger.Warn("Failed to persist SOS history",
			zap.String("record_id", record.ID),
			zap.Int("pending", len(l.pending)),
			zap.Error(err),
		)
		return
	}
	l.records = next
	l.pending = nil

	l.logger.Info("SOS record added",
		zap.String("record_id", record.ID),
		zap.Int("contacts_notified", len(record.ContactsNotified)),
		zap.Bool("has_location", record.HasLocation()),
		zap.Int("history_size", len(next)),
	)
}

// List 返回历史副本（最新在前，包含尚未持久化的记录）
func (l *Log) List(ctx context.Context) []models.SOSRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refresh(ctx)
	return l.merged()
}

func capHistory(records []models.SOSRecord) []models.SOSRecord {
	if len(records) > models.MaxSOSHistory {
		return records[:models.MaxSOSHistory]
	}
	return records
}
