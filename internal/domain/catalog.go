package domain

import "strings"

// PostType — категория поста.
type PostType string

const (
	PostTypeProductShowcase  PostType = "product showcase"
	PostTypePromotionalOffer PostType = "promotional offer"
	PostTypeCompanyUpdate    PostType = "company update"
)

// PostTypes перечисляет допустимые категории в порядке показа.
var PostTypes = []PostType{PostTypeProductShowcase, PostTypePromotionalOffer, PostTypeCompanyUpdate}

// Platform — социальная сеть для публикации.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformFacebook  Platform = "Facebook"
	PlatformTikTok    Platform = "TikTok"
)

// Platforms перечисляет поддерживаемые сети.
var Platforms = []Platform{PlatformInstagram, PlatformFacebook, PlatformTikTok}

// Template — запись статического каталога шаблонов.
type Template struct {
	Reference   string `json:"reference"`
	DisplayName string `json:"displayName"`
}

// Templates — каталог шаблонов Canva. Индексы в диалоге начинаются с единицы.
var Templates = []Template{
	{Reference: "canva-product-showcase-grid", DisplayName: "Product Showcase Grid"},
	{Reference: "canva-flash-sale-banner", DisplayName: "Flash Sale Banner"},
	{Reference: "canva-company-news-card", DisplayName: "Company News Card"},
}

// LookupPostType ищет категорию без учёта регистра.
func LookupPostType(input string) (PostType, bool) {
	needle := strings.TrimSpace(input)
	for _, pt := range PostTypes {
		if strings.EqualFold(string(pt), needle) {
			return pt, true
		}
	}
	return "", false
}

// LookupPlatform ищет сеть без учёта регистра и возвращает каноничное имя.
func LookupPlatform(input string) (Platform, bool) {
	needle := strings.TrimSpace(input)
	for _, p := range Platforms {
		if strings.EqualFold(string(p), needle) {
			return p, true
		}
	}
	return "", false
}

// PlatformNames возвращает имена сетей через запятую.
func PlatformNames() string {
	names := make([]string, 0, len(Platforms))
	for _, p := range Platforms {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
