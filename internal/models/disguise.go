package models

import "fmt"

// DisguiseType 伪装类型（封闭枚举）
type DisguiseType string

const (
	DisguiseCalculator DisguiseType = "calculator"
	DisguiseNotes      DisguiseType = "notes"
	DisguiseClock      DisguiseType = "clock"
)

// DefaultDisguise 未配置时使用的伪装
const DefaultDisguise = DisguiseCalculator

// AllDisguises 所有伪装，按切换顺序排列
var AllDisguises = []DisguiseType{DisguiseCalculator, DisguiseNotes, DisguiseClock}

// Valid 是否为已知伪装
func (d DisguiseType) Valid() bool {
	switch d {
	case DisguiseCalculator, DisguiseNotes, DisguiseClock:
		return true
	}
	return false
}

// Next 返回下一个伪装（循环）
func (d DisguiseType) Next() DisguiseType {
	for i, v := range AllDisguises {
		if v == d {
			return AllDisguises[(i+1)%len(AllDisguises)]
		}
	}
	return DefaultDisguise
}

// Instruction 解锁方式说明（设置界面显示）
func (d DisguiseType) Instruction() string {
	switch d {
	case DisguiseCalculator:
		return "Digite o seu PIN seguido de = para desbloquear"
	case DisguiseNotes:
		return "Escreva o seu PIN seguido de #AJ no texto"
	case DisguiseClock:
		return "Segure a hora por 2 segundos e depois digite o PIN"
	}
	return ""
}

// ParseDisguise 解析伪装类型
func ParseDisguise(s string) (DisguiseType, error) {
	d := DisguiseType(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown disguise: %q", s)
	}
	return d, nil
}
