package weather

import "errors"

var (
	// ErrCityRequired is returned when the city argument is missing.
	ErrCityRequired = errors.New("city argument required")

	// ErrCityNotFound is returned when geocoding has no hit for the city.
	ErrCityNotFound = errors.New("city not found")

	// ErrAPIFailure is returned for a non-200 API response.
	ErrAPIFailure = errors.New("weather API failed")

	// ErrNoConditions is returned when the forecast response carries no
	// current-weather block.
	ErrNoConditions = errors.New("no current conditions in response")
)
