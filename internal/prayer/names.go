package prayer

// CanonicalEvents is the ordered seven-event list the events query indexes
// into.
var CanonicalEvents = []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha", "Midnight"}

// AdhanPrayers are the five prayers an iqama offset can apply to, in the
// order the iqama query parameter lists them.
var AdhanPrayers = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

var arabicNames = map[string]string{
	"Fajr":     "الفجر",
	"Sunrise":  "الشروق",
	"Dhuhr":    "الظهر",
	"Asr":      "العصر",
	"Sunset":   "الغروب",
	"Maghrib":  "المغرب",
	"Isha":     "العشاء",
	"Imsak":    "الإمساك",
	"Midnight": "منتصف الليل",
	"Suhoor":   "السحور",
	"Iftar":    "الإفطار",
	"Tarawih":  "التراويح",
	"Jumuah":   "الجمعة",
	"Iqama":    "الإقامة",
}

var englishNames = map[string]string{
	"Jumuah": "Jumu'ah",
}

// DisplayName localizes an event name. Unknown names fall back to the raw
// upstream key so extra provider timings still render.
func DisplayName(name, lang string) string {
	if lang == "ar" {
		if ar, ok := arabicNames[name]; ok {
			return ar
		}
		return name
	}
	if en, ok := englishNames[name]; ok {
		return en
	}
	return name
}
