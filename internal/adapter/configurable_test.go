package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kzmarket/listingworker/internal/extract"
)

const krishaPage = `<!DOCTYPE html>
<html><body>
<section class="a-list">
	<div class="a-card" data-id="1">
		<a class="a-card__title" href="/a/show/1">2-комнатная квартира</a>
		<div class="a-card__price">25 000 000 ₸</div>
		<div class="a-card__subtitle">Алматы, Бостандыкский р-н, Тимирязева 42</div>
		<div class="a-card__text">Светлая квартира, 3 этаж</div>
		<div class="a-card__area">54,5 м²</div>
		<div class="a-card__rooms">2 комн.</div>
	</div>
	<div class="card--listing" data-id="2">
		<h3>Комната без цены</h3>
		<div class="price">договорная, 5 этаж</div>
		<a href="/a/show/2">подробнее</a>
	</div>
	<div class="a-search-list-item" data-id="3">
		<div class="price">по запросу</div>
		<a href="https://krisha.kz/a/show/3" title="Дом">Дом в Шымкенте 120 м², 85 000 000 ₸</a>
	</div>
	<div class="a-card" data-id="4">
		<div class="a-card__title">Офис в центре</div>
		<div class="a-card__price">150 000 тг</div>
	</div>
</section>
</body></html>`

var fixedTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newKrishaAdapter() *ConfigurableAdapter {
	return NewConfigurableAdapter(KrishaConfig(DefaultGazetteer)).WithClock(func() time.Time { return fixedTime })
}

func TestConfigurableAdapterExtract(t *testing.T) {
	records, err := newKrishaAdapter().Extract([]byte(krishaPage), "https://krisha.kz/arenda/kvartiry/almaty/")
	require.NoError(t, err)
	require.Len(t, records, 3, "the card without a price is dropped")

	first := records[0]
	assert.Equal(t, "krisha.kz", first.Marketplace)
	assert.Equal(t, "Квартиры", first.Category)
	assert.Equal(t, "2-комнатная квартира", first.Title)
	assert.Equal(t, 25_000_000, first.Price)
	assert.Equal(t, "Светлая квартира, 3 этаж", first.Description)
	assert.Equal(t, "Алматы", first.Location)
	assert.Equal(t, "Бостандыкский р-н", first.District)
	require.NotNil(t, first.Area)
	assert.InDelta(t, 54.5, *first.Area, 1e-9)
	require.NotNil(t, first.Rooms)
	assert.Equal(t, 2, *first.Rooms)
	assert.Equal(t, "https://krisha.kz/a/show/1", first.URL)
	assert.Equal(t, fixedTime, first.ScrapedAt)

	house := records[1]
	assert.Equal(t, 85_000_000, house.Price, "price comes from the titled link")
	assert.Equal(t, "Дома", house.Category)
	assert.Equal(t, "Шымкент", house.Location)
	assert.Equal(t, extract.NotSpecified, house.District)
	assert.Nil(t, house.Area)
	assert.Nil(t, house.Rooms)
	assert.Equal(t, "https://krisha.kz/a/show/3", house.URL)

	office := records[2]
	assert.Equal(t, 150_000, office.Price)
	assert.Equal(t, "Коммерческая", office.Category)
	assert.Equal(t, "Офис в центре", office.Description, "description falls back to the title")
	assert.Equal(t, extract.NotSpecified, office.Location)
	assert.Equal(t, extract.NoURL, office.URL)

	for _, r := range records {
		assert.Greater(t, r.Price, 0)
	}
}

func TestConfigurableAdapterIsIdempotent(t *testing.T) {
	a := newKrishaAdapter()
	first, err := a.Extract([]byte(krishaPage), "https://krisha.kz/arenda/")
	require.NoError(t, err)

	a.WithClock(func() time.Time { return fixedTime.Add(time.Hour) })
	second, err := a.Extract([]byte(krishaPage), "https://krisha.kz/arenda/")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, fixedTime.Add(time.Hour), second[i].ScrapedAt)
		second[i].ScrapedAt = first[i].ScrapedAt
	}
	assert.Equal(t, first, second)
}

func TestConfigurableAdapterEmptyPage(t *testing.T) {
	records, err := newKrishaAdapter().Extract([]byte(`<html><body><p>Ничего не найдено</p></body></html>`), "https://krisha.kz/")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestConfigurableAdapterDescriptionTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 25; i++ {
		long += "абвгдежзий"
	}
	page := `<div class="a-card"><h3>Квартира</h3><div class="a-card__price">10 000 000 ₸</div><p>` + long + `</p></div>`

	records, err := newKrishaAdapter().Extract([]byte(page), "https://krisha.kz/")
	require.NoError(t, err)
	require.Len(t, records, 1)

	desc := []rune(records[0].Description)
	assert.Len(t, desc, 203)
	assert.Equal(t, "...", string(desc[200:]))
	assert.Equal(t, string([]rune(long)[:200]), string(desc[:200]))
}

func TestMarketAdapterUsesCardText(t *testing.T) {
	page := `<html><body>
		<div class="ads-list-item">
			<div>Ноутбук Lenovo, Караганда, 180 000 тг</div>
			<a href="/item/55">открыть</a>
		</div>
		<div class="product-card">
			<a title="Диван" href="/item/56">Диван угловой</a>
			<p>Почти новый диван, 2 года</p>
			<span>95000</span>
		</div>
		<div class="product-card"><a title="Часы" href="/item/57">Часы</a><span>500</span></div>
	</body></html>`

	a := NewConfigurableAdapter(MarketConfig(DefaultGazetteer)).WithClock(func() time.Time { return fixedTime })
	records, err := a.Extract([]byte(page), "https://market.kz/elektronika/")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "market.kz", records[0].Marketplace)
	assert.Equal(t, "Ноутбук Lenovo, Караганда, 180 000 тг открыть", records[0].Title)
	assert.Equal(t, 180_000, records[0].Price)
	assert.Equal(t, "Электроника", records[0].Category)
	assert.Equal(t, "Караганда", records[0].Location)
	assert.Equal(t, "https://market.kz/item/55", records[0].URL)

	assert.Equal(t, "Диван угловой", records[1].Title)
	assert.Equal(t, 95_000, records[1].Price)
	assert.Equal(t, "Для дома и сада", records[1].Category)
	assert.Equal(t, "Почти новый диван, 2 года", records[1].Description)
}
