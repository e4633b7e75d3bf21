package dispatch

import (
	"fmt"
	"strings"
)

// Platform 设备平台（决定短信链接的分隔符）
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Channel 分发渠道
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelCall     Channel = "call"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
)

// SMSURL 短信深链：sms:<phone>?body=<msg>（iOS 使用 &）
func SMSURL(platform Platform, phone, message string) string {
	sep := "?"
	if platform == PlatformIOS {
		sep = "&"
	}
	return fmt.Sprintf("sms:%s%sbody=%s", phone, sep, EncodeURIComponent(message))
}

// CallURL 电话深链
func CallURL(phone string) string {
	return "tel:" + phone
}

// WhatsAppURL WhatsApp 深链，号码只保留数字
func WhatsAppURL(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", digitsOnly(phone), EncodeURIComponent(message))
}

// TelegramURL Telegram 深链
func TelegramURL(username, message string) string {
	return fmt.Sprintf("https://t.me/%s?text=%s", username, EncodeURIComponent(message))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeURIComponent 按 URI 组件规则编码：保留 A-Z a-z 0-9 - _ . ! ~ * ' ( )，其余按 UTF-8 字节转义
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
