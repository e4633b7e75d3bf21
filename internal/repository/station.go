package repository

import (
	"context"
	"database/sql"
	"fmt"

	"alertaja/internal/models"

	"go.uber.org/zap"
)

// StationRepository 已核实安全站点目录（PostgreSQL safe_stations 表）
type StationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStationRepository 创建站点目录仓库
func NewStationRepository(db *sql.DB, logger *zap.Logger) *StationRepository {
	return &StationRepository{
		db:     db,
		logger: logger,
	}
}

// ListVerified 查询已核实的站点，province 为空时返回全部省份
func (r *StationRepository) ListVerified(ctx context.Context, province string) ([]models.SafeStation, error) {
	query := `
		SELECT 
			id,
			name,
			address,
			phone,
			province,
			municipality,
			latitude,
			longitude,
			type
		FROM safe_stations
		WHERE is_verified = true
		  AND ($1 = '' OR province = $1)
		ORDER BY province, name
	`

	rows, err := r.db.QueryContext(ctx, query, province)
	if err != nil {
		return nil, fmt.Errorf("failed to query safe_stations: %w", err)
	}
	defer rows.Close()

	var stations []models.SafeStation
	for rows.Next() {
		var (
			st                  models.SafeStation
			phone, municipality sql.NullString
			stationProvince     string
			stationType         string
		)
		if err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.Address,
			&phone,
			&stationProvince,
			&municipality,
			&st.Latitude,
			&st.Longitude,
			&stationType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan safe_station: %w", err)
		}

		st.Type = models.StationType(stationType)
		if !st.Type.Valid() || st.Type == models.StationCustom {
			// 目录中不应出现自定义站点，跳过未知类型
			r.logger.Warn("Skipping station with unknown type",
				zap.String("station_id", st.ID),
				zap.String("type", stationType),
			)
			continue
		}
		if phone.Valid && phone.String != "" {
			p := phone.String
			st.Phone = &p
		}
		if municipality.Valid && municipality.String != "" {
			m := municipality.String
			st.Municipality = &m
		}
		prov := stationProvince
		st.Province = &prov

		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate safe_stations: %w", err)
	}

	return stations, nil
}
