package models

// EmergencyContact 紧急联系人（对应本地存储 contacts 键）
type EmergencyContact struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required,max=80"`
	Phone    string  `json:"phone" validate:"required,max=32"`
	IsPolice bool    `json:"isPolice"`
	WhatsApp *string `json:"whatsapp,omitempty" validate:"omitempty,max=32"`
	Telegram *string `json:"telegram,omitempty" validate:"omitempty,max=64"`
}

// MaxContacts 联系人数量上限
const MaxContacts = 10

// EmergencyNumbers 安哥拉紧急号码（警察、消防、儿童热线、妇女热线）
var EmergencyNumbers = map[string]string{
	"policia":   "113",
	"bombeiros": "190",
	"crianca":   "145",
	"mulher":    "180",
}

// IsEmergencyNumber 判断号码是否为已知紧急号码
func IsEmergencyNumber(phone string) bool {
	for _, n := range EmergencyNumbers {
		if phone == n {
			return true
		}
	}
	return false
}

// CountsAsAuthority 联系人是否满足"至少一个警方/紧急号码"的要求
func (c EmergencyContact) CountsAsAuthority() bool {
	return c.IsPolice || IsEmergencyNumber(c.Phone)
}

// HasWhatsApp 是否配置了 WhatsApp
func (c EmergencyContact) HasWhatsApp() bool {
	return c.WhatsApp != nil && *c.WhatsApp != ""
}

// HasTelegram 是否配置了 Telegram
func (c EmergencyContact) HasTelegram() bool {
	return c.Telegram != nil && *c.Telegram != ""
}
