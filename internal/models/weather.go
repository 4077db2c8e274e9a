package models

// Location is a geocoded place
type Location struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// CurrentWeather holds the current conditions returned by the forecast service
type CurrentWeather struct {
	Temperature   float64
	WindSpeed     float64
	WindDirection float64
	Time          string
}

// WeatherReport is the merged result of a geocoding and a forecast lookup
type WeatherReport struct {
	City     string
	Location Location
	Current  CurrentWeather
}
