package location

import (
	"context"
	"errors"
	"fmt"

	"alertaja/internal/config"
	"alertaja/internal/models"

	"go.uber.org/zap"
)

// Accuracy 定位精度
type Accuracy string

// AccuracyBalanced SOS 使用的均衡精度
const AccuracyBalanced Accuracy = "balanced"

// ErrPermissionDenied 用户拒绝定位权限
var ErrPermissionDenied = errors.New("location permission denied")

// Provider 设备定位源
type Provider interface {
	// RequestPermission 请求前台定位权限
	RequestPermission(ctx context.Context) (bool, error)
	// CurrentPosition 单次定位
	CurrentPosition(ctx context.Context, accuracy Accuracy) (models.Coordinates, error)
}

// StaticProvider 固定坐标（测试与演示用）
type StaticProvider struct {
	Coordinates models.Coordinates
}

// RequestPermission 总是授权
func (p StaticProvider) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// CurrentPosition 返回固定坐标
func (p StaticProvider) CurrentPosition(ctx context.Context, accuracy Accuracy) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return p.Coordinates, nil
}

// NoneProvider 无定位能力，权限总是被拒绝
type NoneProvider struct{}

// RequestPermission 总是拒绝
func (NoneProvider) RequestPermission(ctx context.Context) (bool, error) {
	return false, nil
}

// CurrentPosition 总是失败
func (NoneProvider) CurrentPosition(ctx context.Context, accuracy Accuracy) (models.Coordinates, error) {
	return models.Coordinates{}, ErrPermissionDenied
}

// NewProvider 根据配置创建定位源
func NewProvider(cfg config.LocationConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "none", "":
		return NoneProvider{}, nil
	case "static":
		return StaticProvider{Coordinates: models.Coordinates{
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
		}}, nil
	case "http":
		return NewHTTPProvider(cfg.BaseURL, cfg.Timeout, logger), nil
	}
	return nil, fmt.Errorf("unknown location provider: %q", cfg.Provider)
}
