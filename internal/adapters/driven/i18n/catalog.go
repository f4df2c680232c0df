// Package i18n resolves flow message keys into localized text using a
// golang.org/x/text message catalog.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// Supported lists the catalog languages. The first entry is the fallback.
var Supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var translations = map[language.Tag]map[domain.MessageKey]string{
	language.English: {
		domain.MsgMissingRedirectURI:    "Redirect URI is required",
		domain.MsgFailedToGenerateURL:   "Failed to generate Gemini authorization URL",
		domain.MsgMissingExchangeParams: "Missing code, session, state or redirect URI",
		domain.MsgFailedToExchangeCode:  "Failed to exchange Gemini authorization code",
	},
	language.SimplifiedChinese: {
		domain.MsgMissingRedirectURI:    "请填写回调地址",
		domain.MsgFailedToGenerateURL:   "生成 Gemini 授权链接失败",
		domain.MsgMissingExchangeParams: "缺少授权码、会话、state 或回调地址",
		domain.MsgFailedToExchangeCode:  "Gemini 授权码兑换失败",
	},
}

var (
	defaultCatalog = mustBuildCatalog()
	matcher        = language.NewMatcher(Supported)
)

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := b.SetString(tag, string(key), text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Resolver looks up message keys for one language.
type Resolver struct {
	tag     language.Tag
	printer *message.Printer
}

// NewResolver creates a resolver for lang (a BCP 47 tag such as "en" or
// "zh-CN"). Unknown or empty languages fall back to English.
func NewResolver(lang string) *Resolver {
	tag := Match(lang)
	return &Resolver{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

// Match returns the supported language closest to lang.
func Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return Supported[0]
	}
	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return Supported[0]
	}
	_, idx, confidence := matcher.Match(desired...)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Resolve returns the localized text for key. Keys missing from the
// catalog are returned verbatim.
func (r *Resolver) Resolve(key domain.MessageKey) string {
	return r.printer.Sprintf(string(key))
}

// Language returns the resolver's language tag.
func (r *Resolver) Language() language.Tag {
	return r.tag
}
