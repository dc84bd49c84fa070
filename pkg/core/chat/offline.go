package chat

import (
	"strings"

	"github.com/mano-habib/gimanoui/pkg/i18n"
)

// OfflineReply answers a user query locally while the network is down.
// Identity questions get a real answer; everything else gets the standard
// offline notice for lang.
func OfflineReply(query, lang string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "who are you", "your name", "اسمك", "مين انت"):
		return "I am **Gimanoui** (جمانوي). An intelligent AI developed by **Mano Habib**."
	case containsAny(q, "developer", "made you", "created", "المطور", "مين عملك"):
		return "I was developed by **Mano Habib**."
	default:
		return i18n.T(lang, i18n.KeyOfflineReply)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
