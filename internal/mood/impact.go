// Package mood holds the air-quality wellbeing helpers served next to the forecast:
// a mood-impact heuristic and a canned-response chat companion. Neither touches
// forecast state.
package mood

import (
	"math"
)

// Conditions are the current environmental readings.
type Conditions struct {
	AQI         float64 `json:"aqi"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Impact is the heuristic assessment for a set of conditions. Scores are in [0, 1].
type Impact struct {
	Focus           float64  `json:"focus"`
	Energy          float64  `json:"energy"`
	Mood            float64  `json:"mood"`
	Overall         float64  `json:"overall"`
	Trend           string   `json:"trend"`
	AirImpact       string   `json:"air_quality_impact"`
	Greeting        string   `json:"greeting"`
	Recommendations []string `json:"recommendations"`
}

const (
	comfortTempC    = 22.0
	tempTolerance   = 15.0
	comfortHumidity = 50.0
	aqiSaturation   = 300.0
)

// Assess scores conditions. Worse air, temperatures away from ~22°C and humidity
// away from ~50% all lower the scores.
func Assess(c Conditions) Impact {
	air := clamp01(c.AQI / aqiSaturation)
	temp := clamp01(math.Abs(c.Temperature-comfortTempC) / tempTolerance)
	hum := clamp01(math.Abs(c.Humidity-comfortHumidity) / comfortHumidity)

	focus := round2(clamp01(1 - 0.60*air - 0.25*temp - 0.15*hum))
	energy := round2(clamp01(1 - 0.50*air - 0.30*temp - 0.20*hum))
	moodScore := round2(clamp01(1 - 0.55*air - 0.20*temp - 0.25*hum))
	overall := round2((focus + energy + moodScore) / 3)

	return Impact{
		Focus:           focus,
		Energy:          energy,
		Mood:            moodScore,
		Overall:         overall,
		Trend:           trend(overall),
		AirImpact:       airImpact(c.AQI),
		Greeting:        Greeting(c.AQI),
		Recommendations: recommendations(c, focus, energy),
	}
}

// Greeting is the companion's opening line for the given AQI.
func Greeting(aqi float64) string {
	switch {
	case aqi > 150:
		return "Hi! I'm your AI Mood Companion. I see the air quality is quite poor today. I'm here to help you manage the impact on your well-being. How are you feeling right now?"
	case aqi > 100:
		return "Hello! I'm your AI wellness assistant. The air quality is moderate today, which might affect your mood and energy. How can I support you today?"
	default:
		return "Hi there! I'm your AI Mood Companion. The air quality looks good today! I'm here to help you optimize your well-being. What would you like to know?"
	}
}

func trend(overall float64) string {
	switch {
	case overall >= 0.7:
		return "positive"
	case overall >= 0.5:
		return "stable"
	default:
		return "needs_attention"
	}
}

func airImpact(aqi float64) string {
	switch {
	case aqi > 100:
		return "high"
	case aqi > 50:
		return "moderate"
	default:
		return "low"
	}
}

func recommendations(c Conditions, focus, energy float64) []string {
	recs := []string{}

	switch {
	case c.AQI > 150:
		recs = append(recs, "Stay indoors with windows closed and run an air purifier if you have one.")
	case c.AQI > 100:
		recs = append(recs, "Limit prolonged outdoor exertion and wear a mask outside.")
	case c.AQI > 50:
		recs = append(recs, "Sensitive groups should reduce long outdoor activities.")
	}

	if c.Temperature > 30 {
		recs = append(recs, "Stay hydrated and avoid the midday heat.")
	} else if c.Temperature < 10 {
		recs = append(recs, "Dress warmly; cold air can sap your energy.")
	}

	if c.Humidity > 70 {
		recs = append(recs, "High humidity can feel draining; keep rooms ventilated.")
	} else if c.Humidity < 30 {
		recs = append(recs, "Dry air: drink water regularly and consider a humidifier.")
	}

	if focus < 0.5 {
		recs = append(recs, "Take short breaks every 90 minutes to maintain your focus.")
	}
	if energy < 0.5 {
		recs = append(recs, "Try light indoor exercise or stretching to lift your energy.")
	}
	return recs
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
