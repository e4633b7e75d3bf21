package models

// StationType 安全站点类型
type StationType string

const (
	StationHospital StationType = "hospital"
	StationPolice   StationType = "police"
	StationNGO      StationType = "ngo"
	StationShelter  StationType = "shelter"
	StationCustom   StationType = "custom"
)

// Valid 是否为已知站点类型
func (t StationType) Valid() bool {
	switch t {
	case StationHospital, StationPolice, StationNGO, StationShelter, StationCustom:
		return true
	}
	return false
}

// Label 站点类型显示名称
func (t StationType) Label() string {
	switch t {
	case StationHospital:
		return "Hospital"
	case StationPolice:
		return "Polícia"
	case StationNGO:
		return "ONG"
	case StationShelter:
		return "Abrigo"
	}
	return "Outro"
}

// SafeStation 安全站点（医院、警局、NGO、庇护所）
type SafeStation struct {
	ID           string      `json:"id"`
	Name         string      `json:"name" validate:"required,max=120"`
	Address      string      `json:"address" validate:"required,max=200"`
	Phone        *string     `json:"phone,omitempty"`
	Latitude     float64     `json:"latitude" validate:"latitude"`
	Longitude    float64     `json:"longitude" validate:"longitude"`
	Type         StationType `json:"type"`
	Province     *string     `json:"province,omitempty"`
	Municipality *string     `json:"municipality,omitempty"`
	IsCustom     bool        `json:"isCustom"`
}

// DefaultSafeStations 内置的罗安达站点目录
func DefaultSafeStations() []SafeStation {
	phone := func(s string) *string { return &s }
	return []SafeStation{
		{ID: "1", Name: "Centro de Acolhimento Maianga", Address: "Bairro Maianga, Luanda", Phone: phone("222321456"), Latitude: -8.8383, Longitude: 13.2344, Type: StationShelter},
		{ID: "2", Name: "Hospital Josina Machel", Address: "Rua Major Kanhangulo, Luanda", Phone: phone("222337244"), Latitude: -8.8147, Longitude: 13.2302, Type: StationHospital},
		{ID: "3", Name: "Esquadra Policial - Maianga", Address: "Maianga, Luanda", Phone: phone("113"), Latitude: -8.8380, Longitude: 13.2350, Type: StationPolice},
		{ID: "4", Name: "Rede Mulher Angola", Address: "Luanda Centro", Phone: phone("222390988"), Latitude: -8.8200, Longitude: 13.2400, Type: StationNGO},
		{ID: "5", Name: "SIC - Luanda", Address: "Rua Direita de Luanda", Phone: phone("113"), Latitude: -8.8100, Longitude: 13.2350, Type: StationPolice},
		{ID: "6", Name: "Hospital Militar", Address: "Av. Deolinda Rodrigues, Luanda", Phone: phone("222321000"), Latitude: -8.8300, Longitude: 13.2250, Type: StationHospital},
	}
}
