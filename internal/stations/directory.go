package stations

import (
	"context"
	"fmt"
	"strings"

	"alertaja/internal/models"
	"alertaja/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeaturedCount SOS 面板显示的站点数
const FeaturedCount = 3

// stationStore 本地站点存储
type stationStore interface {
	SafeStations(ctx context.Context) []models.SafeStation
	SetSafeStations(ctx context.Context, stations []models.SafeStation) error
}

// verifiedSource 已核实站点目录（PostgreSQL）
type verifiedSource interface {
	ListVerified(ctx context.Context, province string) ([]models.SafeStation, error)
}

// CustomStationInput 用户添加的站点
type CustomStationInput struct {
	Name    string             `json:"name" validate:"notblank,max=120"`
	Address string             `json:"address" validate:"notblank,max=200"`
	Phone   string             `json:"phone" validate:"max=32"`
	Type    models.StationType `json:"type" validate:"omitempty,oneof=hospital police ngo shelter custom"`
}

// Directory 安全站点目录（内置 + 核实同步 + 用户自定义）
type Directory struct {
	store  stationStore
	logger *zap.Logger
}

// NewDirectory 创建站点目录
func NewDirectory(store stationStore, logger *zap.Logger) *Directory {
	return &Directory{
		store:  store,
		logger: logger.Named("stations"),
	}
}

// List 所有站点（未保存过时为内置罗安达目录）
func (d *Directory) List(ctx context.Context) []models.SafeStation {
	return d.store.SafeStations(ctx)
}

// Get 按 ID 查找站点
func (d *Directory) Get(ctx context.Context, id string) (models.SafeStation, error) {
	for _, s := range d.store.SafeStations(ctx) {
		if s.ID == id {
			return s, nil
		}
	}
	return models.SafeStation{}, fmt.Errorf("station %s: %w", id, models.ErrNotFound)
}

// AddCustom 添加自定义站点（坐标未知时为 0,0）
func (d *Directory) AddCustom(ctx context.Context, in CustomStationInput) (models.SafeStation, error) {
	if err := validation.Struct(in); err != nil {
		return models.SafeStation{}, err
	}

	station := models.SafeStation{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		Type:     in.Type,
		IsCustom: true,
	}
	if station.Type == "" {
		station.Type = models.StationCustom
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		station.Phone = &phone
	}

	stations := append(d.store.SafeStations(ctx), station)
	if err := d.store.SetSafeStations(ctx, stations); err != nil {
		return models.SafeStation{}, fmt.Errorf("failed to save station: %w", err)
	}

	d.logger.Info("Custom station added",
		zap.String("station_id", station.ID),
		zap.String("type", string(station.Type)),
	)
	return station, nil
}

// Remove 删除自定义站点
func (d *Directory) Remove(ctx context.Context, id string) error {
	stations := d.store.SafeStations(ctx)
	kept := make([]models.SafeStation, 0, len(stations))
	found := false
	for _, s := range stations {
		if s.ID == id {
			if !s.IsCustom {
				return models.NewValidationError("id", "only custom stations can be removed")
			}
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return fmt.Errorf("station %s: %w", id, models.ErrNotFound)
	}

	if err := d.store.SetSafeStations(ctx, kept); err != nil {
		return fmt.Errorf("failed to save stations: %w", err)
	}
	return nil
}

// Sync 用核实目录替换非自定义站点，保留用户自定义站点
// 目录为空时保留现有站点
func (d *Directory) Sync(ctx context.Context, src verifiedSource, province string) (int, error) {
	verified, err := src.ListVerified(ctx, province)
	if err != nil {
		return 0, fmt.Errorf("failed to load verified stations: %w", err)
	}
	if len(verified) == 0 {
		d.logger.Warn("Verified directory returned no stations, keeping current list",
			zap.String("province", province),
		)
		return 0, nil
	}

	merged := make([]models.SafeStation, 0, len(verified))
	merged = append(merged, verified...)
	for _, s := range d.store.SafeStations(ctx) {
		if s.IsCustom {
			merged = append(merged, s)
		}
	}

	if err := d.store.SetSafeStations(ctx, merged); err != nil {
		return 0, fmt.Errorf("failed to save stations: %w", err)
	}

	d.logger.Info("Stations synced",
		zap.String("province", province),
		zap.Int("verified", len(verified)),
		zap.Int("total", len(merged)),
	)
	return len(verified), nil
}

// Featured SOS 面板显示的站点：有位置时取最近的，否则取前几个
func (d *Directory) Featured(ctx context.Context, coords *models.Coordinates) []models.SafeStation {
	all := d.store.SafeStations(ctx)
	if coords != nil {
		return Nearest(all, *coords, FeaturedCount)
	}
	if len(all) > FeaturedCount {
		all = all[:FeaturedCount]
	}
	return all
}
