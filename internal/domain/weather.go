package domain

import "math"

// Condition is the discrete weather classification attached to a Chart.
type Condition int

const (
	ConditionUnknown Condition = iota
	ConditionClear
	ConditionCloudyMuchSun
	ConditionCloudyLittleSun
	ConditionOvercast
	ConditionRain
	ConditionSnow
	ConditionFog
)

// conditionCodes are the stable codes persisted by the session store.
// Presentation icon names are derived, never stored (see IconName).
var conditionCodes = map[Condition]string{
	ConditionUnknown:         "unknown",
	ConditionClear:           "clear",
	ConditionCloudyMuchSun:   "cloudy_much_sun",
	ConditionCloudyLittleSun: "cloudy_little_sun",
	ConditionOvercast:        "overcast",
	ConditionRain:            "rain",
	ConditionSnow:            "snow",
	ConditionFog:             "fog",
}

// conditionIcons maps each condition to its display icon name. Legacy
// databases persisted these instead of codes, so ConditionFromCode accepts
// both vocabularies.
var conditionIcons = map[Condition]string{
	ConditionUnknown:         "questionmark.circle",
	ConditionClear:           "sun.max",
	ConditionCloudyMuchSun:   "cloud.sun",
	ConditionCloudyLittleSun: "cloud",
	ConditionOvercast:        "smoke",
	ConditionRain:            "cloud.rain",
	ConditionSnow:            "cloud.snow",
	ConditionFog:             "cloud.fog",
}

// Code returns the stable persistence code for the condition.
func (c Condition) Code() string {
	if code, ok := conditionCodes[c]; ok {
		return code
	}
	return conditionCodes[ConditionUnknown]
}

// IconName returns the display icon name for the condition.
func (c Condition) IconName() string {
	if icon, ok := conditionIcons[c]; ok {
		return icon
	}
	return conditionIcons[ConditionUnknown]
}

func (c Condition) String() string { return c.Code() }

// ConditionFromCode resolves a persisted string back to a Condition. It
// accepts stable codes and legacy icon names; anything unrecognized maps to
// ConditionUnknown.
func ConditionFromCode(code string) Condition {
	for cond, c := range conditionCodes {
		if c == code {
			return cond
		}
	}
	for cond, icon := range conditionIcons {
		if icon == code {
			return cond
		}
	}
	return ConditionUnknown
}

// Classify derives a Condition from raw meteorological fields. Rules apply in
// strict priority order: precipitation type, then fog, then sky condition.
//
// Missing values bias away from fog: absent humidity reads as -1 and absent
// wind speed as +Inf, so the fog rule never fires on incomplete data. In the
// sky branch, absent humidity and precipitation probability read as 0 instead.
func Classify(sky, precip int, humidity, windSpeed, precipProb *float64) Condition {
	if precip != 0 {
		switch precip {
		case 1, 4:
			return ConditionRain
		case 2, 3:
			return ConditionSnow
		default:
			return ConditionUnknown
		}
	}

	fogHumidity := -1.0
	if humidity != nil {
		fogHumidity = *humidity
	}
	fogWind := math.Inf(1)
	if windSpeed != nil {
		fogWind = *windSpeed
	}
	if fogHumidity >= 95 && fogWind <= 2.0 {
		return ConditionFog
	}

	switch sky {
	case 1:
		return ConditionClear
	case 3:
		prob := 0.0
		if precipProb != nil {
			prob = *precipProb
		}
		hum := 0.0
		if humidity != nil {
			hum = *humidity
		}
		if prob >= 30 || hum >= 85 {
			return ConditionCloudyMuchSun
		}
		return ConditionCloudyLittleSun
	case 4:
		return ConditionOvercast
	default:
		return ConditionUnknown
	}
}
