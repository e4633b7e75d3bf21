package location

import (
	"context"

	"alertaja/internal/models"

	"go.uber.org/zap"
)

// Enricher 尽力获取位置：任何失败都只记录日志并返回 nil
type Enricher struct {
	provider Provider
	logger   *zap.Logger
}

// NewEnricher 创建位置补充器
func NewEnricher(provider Provider, logger *zap.Logger) *Enricher {
	return &Enricher{
		provider: provider,
		logger:   logger.Named("location"),
	}
}

// Resolve 请求权限后做一次均衡精度定位
func (e *Enricher) Resolve(ctx context.Context) *models.Coordinates {
	// 1. 请求权限
	granted, err := e.provider.RequestPermission(ctx)
	if err != nil {
		e.logger.Warn("Location permission request failed", zap.Error(err))
		return nil
	}
	if !granted {
		e.logger.Debug("Location permission not granted")
		return nil
	}

	// 2. 单次定位
	coords, err := e.provider.CurrentPosition(ctx, AccuracyBalanced)
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Debug("Location fetch abandoned", zap.Error(ctx.Err()))
			return nil
		}
		e.logger.Warn("Failed to get current position", zap.Error(err))
		return nil
	}

	return &coords
}
