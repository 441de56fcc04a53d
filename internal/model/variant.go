package model

// Variant — один сгенерированный рендер логотипа.
type Variant struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Background string `json:"background"`
	URL        string `json:"url"`
}

const (
	VariantOriginalBlack = "original_black"
	VariantOriginalWhite = "original_white"
	VariantBWBlack       = "bw_black"
	VariantBWWhite       = "bw_white"
)

// VariantKeys задает фиксированный порядок вариантов в ответе.
var VariantKeys = []string{
	VariantOriginalBlack,
	VariantOriginalWhite,
	VariantBWBlack,
	VariantBWWhite,
}

var variantLabels = map[string]string{
	VariantOriginalBlack: "Original",
	VariantOriginalWhite: "Original White",
	VariantBWBlack:       "B&W Black",
	VariantBWWhite:       "B&W White",
}

// Белый фон для черных вариантов и наоборот, чтобы рендер был читаем
// независимо от цвета логотипа.
var variantBackgrounds = map[string]string{
	VariantOriginalBlack: "#ffffff",
	VariantOriginalWhite: "#000000",
	VariantBWBlack:       "#ffffff",
	VariantBWWhite:       "#000000",
}

func VariantLabel(key string) string {
	if label, ok := variantLabels[key]; ok {
		return label
	}
	return key
}

func VariantBackground(key string) string {
	if bg, ok := variantBackgrounds[key]; ok {
		return bg
	}
	return "#1a1a2e"
}
