package bot

import (
	"fmt"
	"html"
	"strings"

	"avito_bot/internal/model"
)

// FormatAdNotification renders an advertisement as an HTML Telegram
// message: title, price, posting date, address and a link to the ad.
func FormatAdNotification(ad *model.Advertisement, origin string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(ad.Title))
	fmt.Fprintf(&b, "Цена: %s р.\n", ad.FormattedPrice())

	// Fall back to the raw listing snippet when the detail page gave us
	// nothing the normalizer could resolve.
	if ad.PostedAt != nil {
		fmt.Fprintf(&b, "Дата/время размещения: %s\n", ad.PostedAt.Format("02.01.2006 15:04"))
	} else if ad.ApproxDateText != "" {
		fmt.Fprintf(&b, "Дата/время размещения: %s\n", html.EscapeString(ad.ApproxDateText))
	}

	fmt.Fprintf(&b, "Адрес: %s\n", html.EscapeString(ad.Address))
	fmt.Fprintf(&b, `<a href="%s">Ссылка на объявление</a>`, ad.FullURL(origin))
	return b.String()
}
