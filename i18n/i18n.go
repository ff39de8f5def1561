// Package i18n holds the static UI translation dictionary. The nested
// locale maps are flattened once at package init into an immutable
// dotted-path lookup table; nothing mutates them after startup.
package i18n

import "strings"

// DefaultLocale is the fallback for unknown locales and missing keys.
const DefaultLocale = "english"

type dict map[string]interface{}

var translations = map[string]dict{
	"english": {
		"welcome":        "Welcome to Task Manager AI",
		"organize_tasks": "Organize your tasks efficiently and boost productivity.",
		"login":          "Login",
		"signup":         "Sign Up",
		"dashboard": dict{
			"welcome":         "Welcome to your Dashboard",
			"total_tasks":     "Total Tasks",
			"completed_tasks": "Completed Tasks",
			"completion_rate": "Completion Rate",
			"avg_duration":    "Avg. Duration",
			"task_trend":      "Task Completion Trend",
			"new_task":        "Add Task",
			"current_time":    "Current Time",
		},
		"settings": dict{
			"title":                "Settings",
			"theme":                "Theme",
			"language":             "Language",
			"notifications":        "Notifications",
			"enable_notifications": "Enable Notifications",
			"export_data":          "Export Data",
			"import_data":          "Import Data",
			"save_settings":        "Save Settings",
		},
	},
	"tamil": {
		"welcome":        "டாஸ்க் மேனேஜர் ஏ.ஐ-க்கு வரவேற்கிறோம்",
		"organize_tasks": "உங்கள் பணிகளை திறமையாக ஒழுங்குபடுத்தி உற்பத்தித்திறனை மேம்படுத்துங்கள்.",
		"login":          "உள்நுழைய",
		"signup":         "பதிவு செய்யவும்",
		"dashboard": dict{
			"welcome":         "உங்கள் டாஷ்போர்டுக்கு வரவேற்கிறோம்",
			"total_tasks":     "மொத்த பணிகள்",
			"completed_tasks": "நிறைவு செய்யப்பட்ட பணிகள்",
			"completion_rate": "நிறைவு விகிதம்",
			"avg_duration":    "சராசரி காலம்",
			"task_trend":      "பணிகள் நிறைவு போக்கு",
			"new_task":        "பணி சேர்க்கவும்",
			"current_time":    "தற்போதைய நேரம்",
		},
		"settings": dict{
			"title":                "அமைப்புகள்",
			"theme":                "தீம்",
			"language":             "மொழி",
			"notifications":        "அறிவிப்புகள்",
			"enable_notifications": "அறிவிப்புகளை இயக்கவும்",
			"export_data":          "தரவை ஏற்றுமதி செய்யவும்",
			"import_data":          "தரவை இறக்குமதி செய்யவும்",
			"save_settings":        "அமைப்புகளை சேமிக்கவும்",
		},
	},
	"hindi": {
		"welcome":        "टास्क मैनेजर एआई में आपका स्वागत है",
		"organize_tasks": "अपने कार्यों को कुशलतापूर्वक व्यवस्थित करें और उत्पादकता बढ़ाएं।",
		"login":          "लॉगिन करें",
		"signup":         "साइन अप करें",
		"dashboard": dict{
			"welcome":         "आपके डैशबोर्ड में आपका स्वागत है",
			"total_tasks":     "कुल कार्य",
			"completed_tasks": "पूर्ण कार्य",
			"completion_rate": "पूर्णता दर",
			"avg_duration":    "औसत अवधि",
			"task_trend":      "कार्य पूर्णता प्रवृत्ति",
			"new_task":        "कार्य जोड़ें",
			"current_time":    "वर्तमान समय",
		},
		"settings": dict{
			"title":                "सेटिंग्स",
			"theme":                "थीम",
			"language":             "भाषा",
			"notifications":        "सूचनाएं",
			"enable_notifications": "सूचनाएं सक्षम करें",
			"export_data":          "डेटा निर्यात करें",
			"import_data":          "डेटा आयात करें",
			"save_settings":        "सेटिंग्स सहेजें",
		},
	},
}

// flat holds the flattened dotted-path lookup per locale, built at init.
var flat = map[string]map[string]string{}

func init() {
	for locale, d := range translations {
		table := map[string]string{}
		flatten("", d, table)
		flat[locale] = table
	}
}

func flatten(prefix string, d dict, out map[string]string) {
	for key, value := range d {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[path] = v
		case dict:
			flatten(path, v, out)
		}
	}
}

// Locales returns the set of supported locale names.
func Locales() []string {
	locales := make([]string, 0, len(translations))
	for locale := range translations {
		locales = append(locales, locale)
	}
	return locales
}

// Supported reports whether the locale has a dictionary.
func Supported(locale string) bool {
	_, ok := translations[locale]
	return ok
}

// Bundle returns the full nested dictionary for a locale, falling back to
// the default locale when the requested one is unknown.
func Bundle(locale string) map[string]interface{} {
	d, ok := translations[strings.ToLower(locale)]
	if !ok {
		d = translations[DefaultLocale]
	}
	return d
}

// Lookup resolves a dotted path like "dashboard.total_tasks" in the given
// locale, falling back to the default locale and finally to the path itself
// so a missing key never renders as an empty string.
func Lookup(locale, path string) string {
	if table, ok := flat[strings.ToLower(locale)]; ok {
		if s, ok := table[path]; ok {
			return s
		}
	}
	if s, ok := flat[DefaultLocale][path]; ok {
		return s
	}
	return path
}
