package extra

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

type Language struct {
	Name   string
	Melo   string // empty when MeloTTS has no model
	Google string
	// melo speaker ids, first is the default
	Speakers []string
}

var languages = []Language{
	{Name: "chinese", Melo: "ZH", Google: "zh-CN", Speakers: []string{"ZH"}},
	{Name: "english", Melo: "EN", Google: "en", Speakers: []string{"EN-US", "EN-BR", "EN_INDIA", "EN-AU", "EN-Default"}},
	{Name: "french", Melo: "FR", Google: "fr", Speakers: []string{"FR"}},
	{Name: "german", Google: "de"},
	{Name: "japanese", Melo: "JP", Google: "ja", Speakers: []string{"JP"}},
	{Name: "korean", Melo: "KR", Google: "ko", Speakers: []string{"KR"}},
	{Name: "spanish", Melo: "ES", Google: "es", Speakers: []string{"ES"}},
}

// LookupLanguage accepts a name ("korean") or a Melo or Google code
// ("KR", "ko"), case-insensitively.
func LookupLanguage(s string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, l := range languages {
		if key == l.Name || key == strings.ToLower(l.Google) ||
			(l.Melo != "" && key == strings.ToLower(l.Melo)) {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

func LanguageNames() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.Name
	}
	return names
}

// ResolveSpeaker maps a requested speaker onto one the Melo model has.
// An unknown speaker falls back to the first one containing its prefix
// (the part before '-'), then to the default speaker.
func (l Language) ResolveSpeaker(speaker string) string {
	if len(l.Speakers) == 0 {
		return ""
	}
	if speaker == "" {
		return l.Speakers[0]
	}
	for _, s := range l.Speakers {
		if s == speaker {
			return s
		}
	}
	prefix := strings.ToUpper(strings.SplitN(speaker, "-", 2)[0])
	for _, s := range l.Speakers {
		if strings.Contains(strings.ToUpper(s), prefix) {
			return s
		}
	}
	return l.Speakers[0]
}
