package models

// UserProfile 用户资料（对应本地存储 user-profile 键）
type UserProfile struct {
	AgeRange string `json:"ageRange" validate:"required"`
	Province string `json:"province" validate:"required"`
	City     string `json:"city"`
}
