package services

import (
	"sort"
	"strings"
	"unicode"
)

// Icon names a glyph the storefront knows how to render.
type Icon string

const (
	IconFacebook    Icon = "facebook"
	IconInstagram   Icon = "instagram"
	IconTwitter     Icon = "twitter"
	IconLinkedin    Icon = "linkedin"
	IconYoutube     Icon = "youtube"
	IconTiktok      Icon = "tiktok"
	IconPinterest   Icon = "pinterest"
	IconWhatsapp    Icon = "whatsapp"
	IconMail        Icon = "mail"
	IconPhone       Icon = "phone"
	IconMapPin      Icon = "map-pin"
	IconShoppingBag Icon = "shopping-bag"
	IconHeart       Icon = "heart"
	IconHome        Icon = "home"
	IconSearch      Icon = "search"
	IconUser        Icon = "user"
	IconGift        Icon = "gift"
	IconTag         Icon = "tag"
	IconStar        Icon = "star"
	IconInfo        Icon = "info"
	IconPackage     Icon = "package"
	IconTruck       Icon = "truck"
)

var knownIcons = map[Icon]struct{}{
	IconFacebook: {}, IconInstagram: {}, IconTwitter: {}, IconLinkedin: {},
	IconYoutube: {}, IconTiktok: {}, IconPinterest: {}, IconWhatsapp: {},
	IconMail: {}, IconPhone: {}, IconMapPin: {}, IconShoppingBag: {},
	IconHeart: {}, IconHome: {}, IconSearch: {}, IconUser: {}, IconGift: {},
	IconTag: {}, IconStar: {}, IconInfo: {}, IconPackage: {}, IconTruck: {},
}

// ParseIcon accepts "ShoppingBag", "shopping_bag" or "shopping-bag" and
// returns the canonical icon.
func ParseIcon(name string) (Icon, bool) {
	icon := Icon(canonicalIconName(name))
	_, ok := knownIcons[icon]
	return icon, ok
}

// Icons lists every known icon in name order.
func Icons() []Icon {
	icons := make([]Icon, 0, len(knownIcons))
	for icon := range knownIcons {
		icons = append(icons, icon)
	}
	sort.Slice(icons, func(i, j int) bool { return icons[i] < icons[j] })
	return icons
}

func canonicalIconName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == ' ' || r == '-':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
