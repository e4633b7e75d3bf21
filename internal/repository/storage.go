package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"alertaja/internal/models"
	"alertaja/internal/store"

	"go.uber.org/zap"
)

// 本地存储键（实际键名再加命名空间前缀，如 @aj_pin）
const (
	KeyOnboardingComplete = "onboarding_complete"
	KeyUserProfile        = "user_profile"
	KeyPin                = "pin"
	KeyContacts           = "contacts"
	KeyActiveDisguise     = "active_disguise"
	KeySafeStations       = "safe_stations"
	KeySOSHistory         = "sos_history"
)

// Storage 设备本地状态仓库
// 读取失败时返回默认值，写入失败时记录日志并返回错误（调用方可忽略）
type Storage struct {
	kv     store.KV
	logger *zap.Logger
}

// NewStorage 创建本地状态仓库
func NewStorage(kv store.KV, logger *zap.Logger) *Storage {
	return &Storage{
		kv:     kv,
		logger: logger,
	}
}

// getJSON 读取并解码，键不存在返回 false
func (s *Storage) getJSON(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Failed to read local state, using default",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("Failed to decode local state, using default",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *Storage) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := s.kv.Set(ctx, key, data); err != nil {
		s.logger.Error("Storage error",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// IsOnboardingComplete 是否完成引导
func (s *Storage) IsOnboardingComplete(ctx context.Context) bool {
	var v bool
	if !s.getJSON(ctx, KeyOnboardingComplete, &v) {
		return false
	}
	return v
}

// SetOnboardingComplete 设置引导完成标记
func (s *Storage) SetOnboardingComplete(ctx context.Context, v bool) error {
	return s.setJSON(ctx, KeyOnboardingComplete, v)
}

// Profile 用户资料，未设置返回 nil
func (s *Storage) Profile(ctx context.Context) *models.UserProfile {
	var p *models.UserProfile
	if !s.getJSON(ctx, KeyUserProfile, &p) {
		return nil
	}
	return p
}

// SetProfile 保存用户资料
func (s *Storage) SetProfile(ctx context.Context, p models.UserProfile) error {
	return s.setJSON(ctx, KeyUserProfile, p)
}

// Pin 解锁密码，未设置返回空串
func (s *Storage) Pin(ctx context.Context) string {
	var pin *string
	if !s.getJSON(ctx, KeyPin, &pin) || pin == nil {
		return ""
	}
	return *pin
}

// SetPin 保存解锁密码
func (s *Storage) SetPin(ctx context.Context, pin string) error {
	return s.setJSON(ctx, KeyPin, pin)
}

// Contacts 紧急联系人
func (s *Storage) Contacts(ctx context.Context) []models.EmergencyContact {
	var contacts []models.EmergencyContact
	if !s.getJSON(ctx, KeyContacts, &contacts) || contacts == nil {
		return []models.EmergencyContact{}
	}
	return contacts
}

// SetContacts 保存紧急联系人
func (s *Storage) SetContacts(ctx context.Context, contacts []models.EmergencyContact) error {
	return s.setJSON(ctx, KeyContacts, contacts)
}

// ActiveDisguise 当前伪装，未设置或无效时返回默认伪装
func (s *Storage) ActiveDisguise(ctx context.Context) models.DisguiseType {
	var d models.DisguiseType
	if !s.getJSON(ctx, KeyActiveDisguise, &d) || !d.Valid() {
		return models.DefaultDisguise
	}
	return d
}

// SetActiveDisguise 保存当前伪装
func (s *Storage) SetActiveDisguise(ctx context.Context, d models.DisguiseType) error {
	return s.setJSON(ctx, KeyActiveDisguise, d)
}

// SafeStations 安全站点，未设置时返回内置目录
func (s *Storage) SafeStations(ctx context.Context) []models.SafeStation {
	var stations []models.SafeStation
	if !s.getJSON(ctx, KeySafeStations, &stations) || stations == nil {
		return models.DefaultSafeStations()
	}
	return stations
}

// SetSafeStations 保存安全站点
func (s *Storage) SetSafeStations(ctx context.Context, stations []models.SafeStation) error {
	return s.setJSON(ctx, KeySafeStations, stations)
}

// LoadSOSHistory SOS 历史（最新在前）
// 与其他读取不同，存储读取失败时返回错误：调用方据此避免用空历史覆盖已有记录。
// 键不存在或内容无法解码时返回空历史。
func (s *Storage) LoadSOSHistory(ctx context.Context) ([]models.SOSRecord, error) {
	raw, err := s.kv.Get(ctx, KeySOSHistory)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []models.SOSRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read SOS history: %w", err)
	}

	var history []models.SOSRecord
	if err := json.Unmarshal(raw, &history); err != nil {
		s.logger.Warn("Failed to decode local state, using default",
			zap.String("key", KeySOSHistory),
			zap.Error(err),
		)
		return []models.SOSRecord{}, nil
	}
	if history == nil {
		history = []models.SOSRecord{}
	}
	return history, nil
}

// SetSOSHistory 保存 SOS 历史（上限由调用方保证）
func (s *Storage) SetSOSHistory(ctx context.Context, history []models.SOSRecord) error {
	return s.setJSON(ctx, KeySOSHistory, history)
}
