package dispatch

import (
	"strconv"

	"alertaja/internal/models"
)

// SOS 消息文本
const (
	SOSMessage        = "ALERTA SOS! Preciso de ajuda urgente!"
	LocationPrefix    = " Minha localização: https://maps.google.com/?q="
	DirectHelpMessage = "Preciso de ajuda!"
)

// BuildMessage 构建 SOS 消息，有位置时附加地图链接
func BuildMessage(coords *models.Coordinates) string {
	if coords == nil {
		return SOSMessage
	}
	return SOSMessage + LocationPrefix + formatCoordinate(coords.Latitude) + "," + formatCoordinate(coords.Longitude)
}

func formatCoordinate(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
