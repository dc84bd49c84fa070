// Package i18n holds the user-facing strings surfaced by the engine.
// Arabic is the product's first language; English is the fallback.
package i18n

import "fmt"

// Key identifies one translatable message.
type Key string

const (
	KeyOffline          Key = "offline"
	KeyQuotaExceeded    Key = "quota_exceeded"
	KeyAPIKeyMissing    Key = "api_key_missing"
	KeyMicDenied        Key = "microphone_denied"
	KeyCameraDenied     Key = "camera_denied"
	KeyConnectionFailed Key = "connection_failed"
	KeyGenericError     Key = "generic_error" // takes one detail argument
	KeyOfflineReply     Key = "offline_reply"
	KeyImageLoading     Key = "image_loading"
	KeyImageFailed      Key = "image_failed"
	KeyVideoFailed      Key = "video_failed"
)

var messages = map[string]map[Key]string{
	"en": {
		KeyOffline:          "No internet connection.",
		KeyQuotaExceeded:    "Sorry, the server is under heavy load. Back in a few seconds.",
		KeyAPIKeyMissing:    "API key error. Please check your configuration.",
		KeyMicDenied:        "Microphone access was denied.",
		KeyCameraDenied:     "Camera access was denied.",
		KeyConnectionFailed: "Connection error.",
		KeyGenericError:     "Error: %s",
		KeyOfflineReply:     "⚠️ **No internet connection.**",
		KeyImageLoading:     "Generating your image...",
		KeyImageFailed:      "Sorry, the image could not be generated.",
		KeyVideoFailed:      "Sorry, the animation could not be generated.",
	},
	"ar": {
		KeyOffline:          "لا يوجد اتصال بالإنترنت.",
		KeyQuotaExceeded:    "عفواً، ضغط كبير على السيرفر. ثواني وراجعين.",
		KeyAPIKeyMissing:    "خطأ في مفتاح API. يرجى التأكد من الإعدادات.",
		KeyMicDenied:        "تم رفض الوصول إلى الميكروفون.",
		KeyCameraDenied:     "تم رفض الوصول إلى الكاميرا.",
		KeyConnectionFailed: "خطأ في الاتصال.",
		KeyGenericError:     "خطأ: %s",
		KeyOfflineReply:     "⚠️ **لا يوجد اتصال بالإنترنت.**",
		KeyImageLoading:     "جاري رسم الصورة...",
		KeyImageFailed:      "عفواً، لم أتمكن من رسم الصورة.",
		KeyVideoFailed:      "عفواً، لم أتمكن من عمل الصورة المتحركة.",
	},
}

// T returns the message for key in lang, falling back to English and then
// to the key itself.
func T(lang string, key Key) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return string(key)
}

// Tf formats a parameterized message.
func Tf(lang string, key Key, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// Supported returns the language codes with full message tables.
func Supported() []string {
	return []string{"en", "ar"}
}
