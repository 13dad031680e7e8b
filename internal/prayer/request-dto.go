package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CalendarQuery binds the query string of the calendar endpoints. Calculation
// parameters feed the upstream fetch and the month cache key; rendering
// parameters only shape the produced document.
type CalendarQuery struct {
	Address   string   `form:"address" binding:"omitempty,max=200"`
	Latitude  *float64 `form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `form:"longitude" binding:"omitempty,min=-180,max=180"`

	Method                   int    `form:"method" binding:"min=0,max=23"`
	School                   int    `form:"school" binding:"min=0,max=1"`
	Shafaq                   string `form:"shafaq" binding:"omitempty,oneof=general ahmer abyad"`
	Tune                     string `form:"tune" binding:"omitempty,csvints"`
	MidnightMode             *int   `form:"midnightMode" binding:"omitempty,min=0,max=1"`
	LatitudeAdjustmentMethod *int   `form:"latitudeAdjustmentMethod" binding:"omitempty,min=1,max=3"`
	Adjustment               *int   `form:"adjustment" binding:"omitempty,min=-2,max=2"`

	Months   int    `form:"months"`
	Alarm    string `form:"alarm" binding:"omitempty,csvints"`
	Duration int    `form:"duration" binding:"min=0,max=180"`
	Events   string `form:"events" binding:"omitempty,csvints"`
	Lang     string `form:"lang" binding:"omitempty,oneof=en ar"`

	RamadanMode     bool `form:"ramadanMode"`
	SuhoorDuration  *int `form:"suhoorDuration" binding:"omitempty,min=0,max=180"`
	IftarDuration   *int `form:"iftarDuration" binding:"omitempty,min=0,max=180"`
	TraweehDuration *int `form:"traweehDuration" binding:"omitempty,min=0,max=240"`

	Iqama  string `form:"iqama" binding:"omitempty,csvints"`
	Jumuah bool   `form:"jumuah"`

	// Accepted for key compatibility with older clients; they change the
	// cache tag but not the output.
	Qibla  bool `form:"qibla"`
	Travel bool `form:"travel"`
}

// Defaults for Ramadan-derived event lengths, in minutes.
const (
	defaultDuration        = 25
	defaultSuhoorDuration  = 30
	defaultIftarDuration   = 45
	defaultTraweehDuration = 60
	defaultMonths          = 3
	maxMonths              = 11
)

var ErrLocationRequired = errors.New("either address or both latitude and longitude are required")

// RegisterValidations installs the csvints rule on a validator engine. The
// package init hooks it into gin's default binding validator.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("csvints", func(fl validator.FieldLevel) bool {
		_, err := parseCSVInts(fl.Field().String())
		return err == nil
	})
}

// Normalize fills defaults and clamps ranges after binding.
func (q *CalendarQuery) Normalize() {
	if q.Months <= 0 {
		q.Months = defaultMonths
	}
	if q.Months > maxMonths {
		q.Months = maxMonths
	}
	if q.Duration <= 0 {
		q.Duration = defaultDuration
	}
	if q.Lang == "" {
		q.Lang = "en"
	}
	q.Address = strings.TrimSpace(q.Address)
}

// Validate enforces cross-field rules binding tags cannot express.
func (q *CalendarQuery) Validate() error {
	if q.Address == "" && (q.Latitude == nil || q.Longitude == nil) {
		return ErrLocationRequired
	}
	return nil
}

// Params projects the calculation parameters, the only inputs that reach the
// upstream provider and the month cache.
func (q *CalendarQuery) Params() Params {
	return Params{
		Address:                  q.Address,
		Latitude:                 q.Latitude,
		Longitude:                q.Longitude,
		Method:                   q.Method,
		School:                   q.School,
		Shafaq:                   q.Shafaq,
		Tune:                     q.Tune,
		MidnightMode:             q.MidnightMode,
		LatitudeAdjustmentMethod: q.LatitudeAdjustmentMethod,
		Adjustment:               q.Adjustment,
	}
}

// Options projects the rendering parameters.
func (q *CalendarQuery) Options() EventOptions {
	indices, _ := parseCSVInts(q.Events)
	alarms, _ := parseCSVInts(q.Alarm)
	iqama, _ := parseCSVInts(q.Iqama)

	return EventOptions{
		Indices:         indices,
		Duration:        q.Duration,
		Alarms:          alarms,
		Lang:            q.Lang,
		RamadanMode:     q.RamadanMode,
		SuhoorDuration:  intOrDefault(q.SuhoorDuration, defaultSuhoorDuration),
		IftarDuration:   intOrDefault(q.IftarDuration, defaultIftarDuration),
		TraweehDuration: intOrDefault(q.TraweehDuration, defaultTraweehDuration),
		IqamaOffsets:    iqama,
		Jumuah:          q.Jumuah,
	}
}

// ParamMap flattens every request parameter that influences the produced
// document into a string map for cache tagging. Only explicitly supplied
// optional values participate, so omitting a parameter and passing its
// default can hash differently; that only costs a duplicate cache entry.
func (q *CalendarQuery) ParamMap(format string) map[string]string {
	m := map[string]string{
		"format":   format,
		"location": NormalizeLocation(q.Params()),
		"method":   strconv.Itoa(q.Method),
		"school":   strconv.Itoa(q.School),
		"months":   strconv.Itoa(q.Months),
		"duration": strconv.Itoa(q.Duration),
		"lang":     q.Lang,
	}
	if q.Shafaq != "" {
		m["shafaq"] = q.Shafaq
	}
	if q.Tune != "" {
		m["tune"] = q.Tune
	}
	if q.MidnightMode != nil {
		m["midnightMode"] = strconv.Itoa(*q.MidnightMode)
	}
	if q.LatitudeAdjustmentMethod != nil {
		m["latitudeAdjustmentMethod"] = strconv.Itoa(*q.LatitudeAdjustmentMethod)
	}
	if q.Adjustment != nil {
		m["adjustment"] = strconv.Itoa(*q.Adjustment)
	}
	if q.Alarm != "" {
		m["alarm"] = q.Alarm
	}
	if q.Events != "" {
		m["events"] = q.Events
	}
	if q.RamadanMode {
		m["ramadanMode"] = "1"
		if q.SuhoorDuration != nil {
			m["suhoorDuration"] = strconv.Itoa(*q.SuhoorDuration)
		}
		if q.IftarDuration != nil {
			m["iftarDuration"] = strconv.Itoa(*q.IftarDuration)
		}
		if q.TraweehDuration != nil {
			m["traweehDuration"] = strconv.Itoa(*q.TraweehDuration)
		}
	}
	if q.Iqama != "" {
		m["iqama"] = q.Iqama
	}
	if q.Jumuah {
		m["jumuah"] = "1"
	}
	if q.Qibla {
		m["qibla"] = "1"
	}
	if q.Travel {
		m["travel"] = "1"
	}
	return m
}

// parseCSVInts parses "5,-10,0" style lists. Empty input yields nil.
func parseCSVInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer list %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func intOrDefault(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
