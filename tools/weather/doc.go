// Package weather is a small HTTP-backed tool: it geocodes a city name and
// reports the current conditions at the resolved coordinates. It exists to
// keep the registry honest about hosting more than one tool family.
package weather
