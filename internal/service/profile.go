package service

import (
	"context"
	"fmt"
	"strings"

	"alertaja/internal/models"
	"alertaja/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// profileStore 资料、PIN、联系人持久化
type profileStore interface {
	IsOnboardingComplete(ctx context.Context) bool
	SetOnboardingComplete(ctx context.Context, done bool) error
	SetProfile(ctx context.Context, p models.UserProfile) error
	SetPin(ctx context.Context, pin string) error
	Contacts(ctx context.Context) []models.EmergencyContact
	SetContacts(ctx context.Context, contacts []models.EmergencyContact) error
}

// unlocker PIN 修改后重建识别器，引导完成后解锁
type unlocker interface {
	Reload(ctx context.Context) error
	SetDisguise(ctx context.Context, d models.DisguiseType) error
	Unlock()
}

// PinInput PIN 设置表单
type PinInput struct {
	Pin     string `json:"pin" validate:"required,number"`
	Confirm string `json:"confirm" validate:"required,eqfield=Pin"`
}

// ContactInput 联系人表单
type ContactInput struct {
	Name     string `json:"name" validate:"notblank,max=80"`
	Phone    string `json:"phone" validate:"notblank,max=32"`
	IsPolice bool   `json:"isPolice"`
	WhatsApp string `json:"whatsapp" validate:"max=32"`
	Telegram string `json:"telegram" validate:"max=64"`
}

// OnboardingInput 引导完成时提交的全部设置
type OnboardingInput struct {
	Profile  models.UserProfile
	Pin      PinInput
	Contacts []ContactInput
	Disguise models.DisguiseType
}

// Profile 用户资料服务：表单校验在这里完成，核心只接收合法数据
type Profile struct {
	store     profileStore
	guard     unlocker
	pinLength int
	logger    *zap.Logger
}

// NewProfile 创建资料服务
func NewProfile(store profileStore, guard unlocker, pinLength int, logger *zap.Logger) *Profile {
	return &Profile{
		store:     store,
		guard:     guard,
		pinLength: pinLength,
		logger:    logger.Named("profile"),
	}
}

// validatePin 数字、长度、确认一致
func (p *Profile) validatePin(in PinInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if len(in.Pin) != p.pinLength {
		return models.NewValidationError("pin", fmt.Sprintf("must be %d digits", p.pinLength))
	}
	return nil
}

// SetPin 修改 PIN 并重建识别器
func (p *Profile) SetPin(ctx context.Context, in PinInput) error {
	if err := p.validatePin(in); err != nil {
		return err
	}
	if err := p.store.SetPin(ctx, in.Pin); err != nil {
		return fmt.Errorf("failed to save pin: %w", err)
	}
	if err := p.guard.Reload(ctx); err != nil {
		return err
	}

	p.logger.Info("PIN updated")
	return nil
}

// newContact 校验表单并生成联系人
func newContact(in ContactInput) (models.EmergencyContact, error) {
	if err := validation.Struct(in); err != nil {
		return models.EmergencyContact{}, err
	}

	c := models.EmergencyContact{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		IsPolice: in.IsPolice,
	}
	if wa := strings.TrimSpace(in.WhatsApp); wa != "" {
		c.WhatsApp = &wa
	}
	if tg := strings.TrimPrefix(strings.TrimSpace(in.Telegram), "@"); tg != "" {
		c.Telegram = &tg
	}
	return c, nil
}

// AddContact 添加联系人（最多 MaxContacts 个）
func (p *Profile) AddContact(ctx context.Context, in ContactInput) (models.EmergencyContact, error) {
	c, err := newContact(in)
	if err != nil {
		return models.EmergencyContact{}, err
	}

	contacts := p.store.Contacts(ctx)
	if len(contacts) >= models.MaxContacts {
		return models.EmergencyContact{}, fmt.Errorf("at most %d contacts: %w", models.MaxContacts, models.ErrLimitReached)
	}

	if err := p.store.SetContacts(ctx, append(contacts, c)); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("failed to save contacts: %w", err)
	}

	p.logger.Info("Contact added",
		zap.String("contact_id", c.ID),
		zap.Bool("is_police", c.IsPolice),
	)
	return c, nil
}

// RemoveContact 删除联系人
func (p *Profile) RemoveContact(ctx context.Context, id string) error {
	contacts := p.store.Contacts(ctx)
	kept := make([]models.EmergencyContact, 0, len(contacts))
	for _, c := range contacts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(contacts) {
		return fmt.Errorf("contact %s: %w", id, models.ErrNotFound)
	}

	if err := p.store.SetContacts(ctx, kept); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}
	return nil
}

// CompleteOnboarding 保存引导设置并进入面板
// 至少需要一个警方联系人或紧急号码
func (p *Profile) CompleteOnboarding(ctx context.Context, in OnboardingInput) error {
	// 1. 校验
	if err := validation.Struct(in.Profile); err != nil {
		return err
	}
	if err := p.validatePin(in.Pin); err != nil {
		return err
	}
	if len(in.Contacts) == 0 {
		return models.NewValidationError("contacts", "required")
	}
	if len(in.Contacts) > models.MaxContacts {
		return fmt.Errorf("at most %d contacts: %w", models.MaxContacts, models.ErrLimitReached)
	}

	contacts := make([]models.EmergencyContact, 0, len(in.Contacts))
	hasAuthority := false
	for _, ci := range in.Contacts {
		c, err := newContact(ci)
		if err != nil {
			return err
		}
		hasAuthority = hasAuthority || c.CountsAsAuthority()
		contacts = append(contacts, c)
	}
	if !hasAuthority {
		return models.NewValidationError("contacts", "at least one police or emergency number contact is required")
	}

	disguise := in.Disguise
	if disguise == "" {
		disguise = models.DefaultDisguise
	}
	if !disguise.Valid() {
		return models.NewValidationError("disguise", "unknown disguise")
	}

	// 2. 保存
	if err := p.store.SetProfile(ctx, in.Profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if err := p.store.SetPin(ctx, in.Pin.Pin); err != nil {
		return fmt.Errorf("failed to save pin: %w", err)
	}
	if err := p.store.SetContacts(ctx, contacts); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}
	if err := p.store.SetOnboardingComplete(ctx, true); err != nil {
		return fmt.Errorf("failed to save onboarding state: %w", err)
	}

	// 3. 切换伪装、加载新 PIN 并进入面板
	if err := p.guard.SetDisguise(ctx, disguise); err != nil {
		return fmt.Errorf("failed to save disguise: %w", err)
	}
	if err := p.guard.Reload(ctx); err != nil {
		return err
	}
	p.guard.Unlock()

	p.logger.Info("Onboarding completed",
		zap.Int("contacts", len(contacts)),
		zap.String("disguise", string(disguise)),
	)
	return nil
}

// IsOnboarded 是否已完成引导
func (p *Profile) IsOnboarded(ctx context.Context) bool {
	return p.store.IsOnboardingComplete(ctx)
}
