package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Supported locales.
const (
	LocaleEN   = "en"
	LocaleZhTW = "zh-TW"
)

// catalogs maps a normalized locale to its messages. English is the
// fallback for every key a catalog lacks.
var catalogs = map[string]map[string]string{
	LocaleEN:   EnMessages,
	LocaleZhTW: ZhTWMessages,
}

// I18n 一个语言环境的只读翻译表
// I18n is an immutable translation table for one locale. Switching language
// means building a new one.
type I18n struct {
	locale  string
	catalog map[string]string
}

var global atomic.Pointer[I18n]

// Global 返回全局实例，首次调用时按环境变量检测语言
// Global returns the process-wide instance, detecting the locale from the
// environment on first use.
func Global() *I18n {
	if g := global.Load(); g != nil {
		return g
	}
	global.CompareAndSwap(nil, New(""))
	return global.Load()
}

// Init replaces the process-wide instance.
func Init(locale string) {
	global.Store(New(locale))
}

// T translates with the process-wide instance.
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New builds a table for locale; an empty locale is detected from the
// environment.
func New(locale string) *I18n {
	if strings.TrimSpace(locale) == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)
	return &I18n{locale: locale, catalog: catalogs[locale]}
}

// T 查找 key 并按 fmt 规则代入参数；找不到时原样返回 key
// T looks key up and formats args into it. Unknown keys come back verbatim.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.catalog[key]
	if !ok {
		if tmpl, ok = EnMessages[key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func (i *I18n) Locale() string { return i.locale }

// DetectLocale reads MEMO_LANG, then the usual POSIX locale variables.
func DetectLocale() string {
	for _, name := range []string{"MEMO_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return normalizeLocale(v)
		}
	}
	return LocaleEN
}

// normalizeLocale maps POSIX-style names onto the supported locales. Any
// Chinese variant uses the Traditional catalog; unknown languages keep
// their dashed name and read English text.
func normalizeLocale(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), ".")
	if s == "" {
		return LocaleEN
	}
	s = strings.ReplaceAll(s, "_", "-")
	switch lang, _, _ := strings.Cut(strings.ToLower(s), "-"); lang {
	case "zh":
		return LocaleZhTW
	case "en", "c", "posix":
		return LocaleEN
	}
	return s
}

// QuickPrompts 返回当前语言的快速提问
// QuickPrompts returns the built-in quick prompts for the locale.
func (i *I18n) QuickPrompts() []string {
	return []string{i.T("quick.1"), i.T("quick.2"), i.T("quick.3")}
}

// FormatTime renders t the way the locale's users expect a wall-clock
// timestamp, e.g. "2025/5/1 上午9:00:00" for zh-TW.
func (i *I18n) FormatTime(t time.Time) string {
	if i.locale == LocaleZhTW {
		period := "上午"
		if t.Hour() >= 12 {
			period = "下午"
		}
		hour := t.Hour() % 12
		if hour == 0 {
			hour = 12
		}
		return fmt.Sprintf("%d/%d/%d %s%d:%02d:%02d",
			t.Year(), int(t.Month()), t.Day(), period, hour, t.Minute(), t.Second())
	}
	return t.Format("1/2/2006, 3:04:05 PM")
}
