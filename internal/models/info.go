package models

// identityLabels are info fields holding a Telegram handle rather than a URL
var identityLabels = map[string]bool{
	"Преподаватель": true,
	"Ассистент":     true,
	"Канал":         true,
	"Teacher":       true,
	"Assistant":     true,
	"Channel":       true,
}

type InfoItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// IsIdentity returns true if the value should be shown as an @handle
func (i *InfoItem) IsIdentity() bool {
	return identityLabels[i.Label]
}
