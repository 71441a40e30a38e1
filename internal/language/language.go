package language

import (
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Canned user-facing strings for the API and the chat fallback path. English
// defaults are the contract; other locales can be layered in via AddMessages.

const (
	MsgFallbackReply     = "FallbackReply"
	MsgSessionNotFound   = "SessionNotFound"
	MsgMessageAdded      = "MessageAdded"
	MsgParametersUpdated = "ParametersUpdated"
	MsgSessionDeleted    = "SessionDeleted"
)

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	langMutex sync.RWMutex
)

func init() {
	bundle = i18n.NewBundle(language.English)

	bundle.AddMessages(language.English,
		&i18n.Message{ID: MsgFallbackReply, Other: "I'm having trouble connecting to the model service."},
		&i18n.Message{ID: MsgSessionNotFound, Other: "Negotiation session not found"},
		&i18n.Message{ID: MsgMessageAdded, Other: "Message added successfully"},
		&i18n.Message{ID: MsgParametersUpdated, Other: "Parameters updated successfully"},
		&i18n.Message{ID: MsgSessionDeleted, Other: "Negotiation session deleted successfully"},
	)

	localizer = i18n.NewLocalizer(bundle, language.English.String())
}

// SetLocale switches the active locale, falling back to English for any
// message the locale doesn't carry.
func SetLocale(tag string) {
	langMutex.Lock()
	localizer = i18n.NewLocalizer(bundle, tag, language.English.String())
	langMutex.Unlock()
}

// AddMessages registers translations for a locale.
func AddMessages(tag language.Tag, messages ...*i18n.Message) error {
	langMutex.Lock()
	defer langMutex.Unlock()
	return bundle.AddMessages(tag, messages...)
}

// T resolves a message id in the active locale.
func T(id string) string {
	langMutex.RLock()
	defer langMutex.RUnlock()

	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}
