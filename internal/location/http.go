package location

import (
	"context"
	"fmt"
	"time"

	"alertaja/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// permissionResponse 设备定位桥权限响应
type permissionResponse struct {
	Granted bool `json:"granted"`
}

// positionResponse 设备定位桥坐标响应
type positionResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HTTPProvider 通过设备外壳的本地 HTTP 定位桥获取坐标
type HTTPProvider struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewHTTPProvider 创建 HTTP 定位源（单次请求，不重试）
func NewHTTPProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPProvider{
		httpClient: client,
		logger:     logger.Named("location"),
	}
}

// RequestPermission 请求前台定位权限
func (p *HTTPProvider) RequestPermission(ctx context.Context) (bool, error) {
	var result permissionResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Post("/location/permission")
	if err != nil {
		return false, fmt.Errorf("failed to request location permission: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("location bridge returned status %d", resp.StatusCode())
	}
	return result.Granted, nil
}

// CurrentPosition 单次定位
func (p *HTTPProvider) CurrentPosition(ctx context.Context, accuracy Accuracy) (models.Coordinates, error) {
	var result positionResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetQueryParam("accuracy", string(accuracy)).
		SetResult(&result).
		Get("/location/current")
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to get current position: %w", err)
	}
	if resp.IsError() {
		return models.Coordinates{}, fmt.Errorf("location bridge returned status %d", resp.StatusCode())
	}

	p.logger.Debug("Position received",
		zap.Float64("latitude", result.Latitude),
		zap.Float64("longitude", result.Longitude),
	)

	return models.Coordinates{
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
	}, nil
}
