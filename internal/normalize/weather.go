package normalize

import (
	"time"
)

type WeatherConditions struct {
	Main        string `bson:"main,omitempty"`
	Description string `bson:"description,omitempty"`
	Icon        string `bson:"icon,omitempty"`
}

type Temperature struct {
	Current   *float64 `bson:"current,omitempty"`
	FeelsLike *float64 `bson:"feels_like,omitempty"`
	Min       *float64 `bson:"min,omitempty"`
	Max       *float64 `bson:"max,omitempty"`
}

type Wind struct {
	Speed     *float64 `bson:"speed,omitempty"`
	Direction *float64 `bson:"direction,omitempty"`
}

type Coordinates struct {
	Latitude  *float64 `bson:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty"`
}

// WeatherDoc is the stored shape for one city observation.
type WeatherDoc struct {
	CityID             *int64             `bson:"city_id,omitempty"`
	CityName           string             `bson:"city_name"`
	Country            string             `bson:"country,omitempty"`
	Conditions         *WeatherConditions `bson:"weather,omitempty"`
	Temperature        Temperature        `bson:"temperature"`
	Humidity           *float64           `bson:"humidity,omitempty"`
	Pressure           *float64           `bson:"pressure,omitempty"`
	Visibility         *float64           `bson:"visibility,omitempty"`
	Wind               *Wind              `bson:"wind,omitempty"`
	Coordinates        *Coordinates       `bson:"coordinates,omitempty"`
	APITimestamp       *time.Time         `bson:"api_timestamp,omitempty"`
	IngestionTimestamp time.Time          `bson:"ingestion_timestamp"`
	RawData            Payload            `bson:"raw_data"`
}

// WeatherNormalizer maps OpenWeatherMap current-weather bodies.
type WeatherNormalizer struct{}

func (WeatherNormalizer) Normalize(p Payload, ingestedAt time.Time) (any, error) {
	return WeatherDocument(p, ingestedAt)
}

// WeatherDocument builds a WeatherDoc from one current-weather payload.
// A record without a city name or a current temperature is incomplete and
// fails validation; every other field is optional and simply omitted when
// the provider left it out.
func WeatherDocument(p Payload, ingestedAt time.Time) (WeatherDoc, error) {
	name, ok := p.String("name")
	if !ok || name == "" {
		return WeatherDoc{}, missingField("city name")
	}
	mainBlock, ok := p.Map("main")
	if !ok {
		return WeatherDoc{}, missingField("main measurement block")
	}
	cur, ok := mainBlock.Float("temp")
	if !ok {
		return WeatherDoc{}, missingField("current temperature")
	}

	doc := WeatherDoc{
		CityName:           name,
		Temperature:        Temperature{Current: &cur},
		IngestionTimestamp: ingestedAt,
		RawData:            p,
	}

	if id, ok := p.Float("id"); ok {
		cid := int64(id)
		doc.CityID = &cid
	}
	if sys, ok := p.Map("sys"); ok {
		doc.Country, _ = sys.String("country")
	}
	if ws, ok := p.Maps("weather"); ok && len(ws) > 0 {
		w := ws[0]
		cond := WeatherConditions{}
		cond.Main, _ = w.String("main")
		cond.Description, _ = w.String("description")
		cond.Icon, _ = w.String("icon")
		doc.Conditions = &cond
	}

	doc.Temperature.FeelsLike = optFloat(mainBlock, "feels_like")
	doc.Temperature.Min = optFloat(mainBlock, "temp_min")
	doc.Temperature.Max = optFloat(mainBlock, "temp_max")
	doc.Humidity = optFloat(mainBlock, "humidity")
	doc.Pressure = optFloat(mainBlock, "pressure")
	doc.Visibility = optFloat(p, "visibility")

	if wind, ok := p.Map("wind"); ok {
		doc.Wind = &Wind{
			Speed:     optFloat(wind, "speed"),
			Direction: optFloat(wind, "deg"),
		}
	}
	if coord, ok := p.Map("coord"); ok {
		doc.Coordinates = &Coordinates{
			Latitude:  optFloat(coord, "lat"),
			Longitude: optFloat(coord, "lon"),
		}
	}
	if dt, ok := p.Float("dt"); ok {
		ts := time.Unix(int64(dt), 0).UTC()
		doc.APITimestamp = &ts
	}

	return doc, nil
}

func optFloat(p Payload, key string) *float64 {
	if v, ok := p.Float(key); ok {
		return &v
	}
	return nil
}
