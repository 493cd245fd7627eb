package adapter

import "kzmarket/listingworker/internal/extract"

// DefaultGazetteer is the ordered list of Kazakh place names; the first contained entry wins
var DefaultGazetteer = []string{
	"Алматы", "Алмата", "Астана", "Нур-Султан", "Шымкент", "Караганда",
	"Актобе", "Тараз", "Павлодар", "Усть-Каменогорск", "Семей",
	"Атырау", "Костанай", "Кызылорда", "Актау", "Петропавловск",
	"Талдыкорган", "Кокшетау", "Уральск",
}

// KrishaConfig returns the krisha.kz real-estate configuration
func KrishaConfig(gazetteer []string) SiteConfig {
	return SiteConfig{
		SiteKey:     "krisha_kz",
		Marketplace: "krisha.kz",
		Hosts:       []string{"krisha.kz"},
		Selectors: Selectors{
			Cards:         []string{".a-card", ".a-card__inc", ".card--listing", ".a-search-list-item"},
			Title:         ".a-card__title, a[title], h3, h2, .a-card__title-link",
			Price:         ".a-card__price, .a-card__price ~ span, .card__price, .price, [data-price], .a-card__price-value",
			PriceFallback: "a[href][title]",
			Location:      ".a-card__subtitle, .a-card__location, .location, .address",
			Description:   ".a-card__description, .desc, p, .a-card__text",
			Area:          `[class*="area"], [class*="square"], [class*="площадь"]`,
			Rooms:         `[class*="room"], [class*="комнат"]`,
		},
		Categories: extract.Vocabulary{
			{Label: "Квартиры", Keywords: []string{"квартира", "1-комнат", "2-комнат", "3-комнат", "студия"}},
			{Label: "Дома", Keywords: []string{"дом", "коттедж", "дача"}},
			{Label: "Коммерческая", Keywords: []string{"офис", "магазин", "склад", "помещение"}},
			{Label: "Участки", Keywords: []string{"участок", "земля", "территория"}},
			{Label: "Гаражи", Keywords: []string{"гараж", "паркинг", "машиноместо"}},
		},
		Gazetteer: gazetteer,
	}
}

// MarketConfig returns the market.kz classifieds configuration.
// Its cards carry no dedicated price or location element, so the card text is used.
func MarketConfig(gazetteer []string) SiteConfig {
	return SiteConfig{
		SiteKey:     "market_kz",
		Marketplace: "market.kz",
		Hosts:       []string{"market.kz"},
		Selectors: Selectors{
			Cards:       []string{".a-card", ".ads-list-item", ".product-card"},
			Title:       "a[title], .a-card__title, h2, h3",
			Description: ".a-card__description, .desc, p",
		},
		Categories: extract.Vocabulary{
			{Label: "Электроника", Keywords: []string{"телефон", "компьютер", "ноутбук", "планшет", "наушники"}},
			{Label: "Для дома и сада", Keywords: []string{"мебель", "стол", "диван", "кровать", "шкаф"}},
			{Label: "Личные вещи", Keywords: []string{"одежда", "обувь", "сумка", "часы", "украшения"}},
			{Label: "Детям", Keywords: []string{"игрушка", "коляска", "автокресло", "одежда детская"}},
		},
		Gazetteer:          gazetteer,
		TitleFallbackRunes: 120,
	}
}

// DefaultSiteConfigs returns the built-in marketplaces in resolution order
func DefaultSiteConfigs(gazetteer []string) []SiteConfig {
	if len(gazetteer) == 0 {
		gazetteer = DefaultGazetteer
	}
	return []SiteConfig{
		KrishaConfig(gazetteer),
		MarketConfig(gazetteer),
	}
}

// NewDefaultRegistry creates a registry with every built-in marketplace
func NewDefaultRegistry(gazetteer []string) *Registry {
	var adapters []HostedAdapter
	for _, cfg := range DefaultSiteConfigs(gazetteer) {
		adapters = append(adapters, NewConfigurableAdapter(cfg))
	}
	return NewRegistry(adapters...)
}
