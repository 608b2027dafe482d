package i18n

var catalogs = map[Locale]map[string]string{
	SK: {
		"site.title":            "Obchod",
		"nav.home":              "Domov",
		"nav.sold":              "Predané",
		"nav.blog":              "Blog",
		"nav.categories":        "Kategórie",
		"nav.language":          "Jazyk",
		"category.all":          "Všetko",
		"category.empty":        "V tejto kategórii zatiaľ nie sú žiadne produkty.",
		"product.price":         "Cena",
		"product.sold":          "Predané",
		"product.recreatable":   "Predané, ale môžeme vyrobiť znova",
		"product.order":         "Objednať",
		"product.gallery":       "Galéria",
		"order.title":           "Objednávka produktu {title}",
		"order.email":           "E-mail",
		"order.phone":           "Telefón",
		"order.contactRequired": "Zadajte e-mail alebo telefón.",
		"order.submit":          "Odoslať objednávku",
		"order.thanks":          "Ďakujeme! Ozveme sa vám čo najskôr.",
		"order.unavailable":     "Tento produkt už nie je dostupný.",
		"sold.title":            "Predané kúsky",
		"sold.empty":            "Zatiaľ nič nebolo predané.",
		"sold.at":               "Predané {date}",
		"blog.latest":           "Najnovšie články",
		"blog.empty":            "Zatiaľ žiadne články.",
		"blog.by":               "Autor: {author}",
		"admin.dashboard":       "Prehľad",
		"admin.categories":      "Kategórie",
		"admin.products":        "Produkty",
		"admin.posts":           "Články",
		"admin.orders":          "Objednávky",
		"admin.logout":          "Odhlásiť sa",
		"admin.login":           "Prihlásenie",
		"admin.email":           "E-mail",
		"admin.password":        "Heslo",
		"admin.save":            "Uložiť",
		"admin.delete":          "Zmazať",
		"admin.edit":            "Upraviť",
		"admin.new":             "Nový",
		"admin.title":           "Názov",
		"admin.slug":            "Slug",
		"admin.parent":          "Nadradená kategória",
		"admin.noParent":        "Žiadna (koreňová)",
		"admin.reorder":         "Zoradiť produkty",
		"admin.unseenOrders":    "Nové objednávky: {count}",
		"admin.markSeen":        "Označiť ako videné",
		"admin.invalidLogin":    "Nesprávny e-mail alebo heslo.",
		"admin.invalidCode":     "Neplatný overovací kód.",
		"admin.twofa":           "Dvojfaktorové overenie",
		"admin.twofaCode":       "Overovací kód",
		"admin.twofaScan":       "Naskenujte QR kód v aplikácii na overovanie.",
		"admin.description":     "Popis (Markdown)",
		"admin.priceCents":      "Cena v centoch",
		"admin.primaryCategory": "Hlavná kategória",
		"admin.otherCategories": "Ďalšie kategórie",
		"admin.soldAt":          "Predané dňa",
		"admin.recreatable":     "Dá sa vyrobiť znova",
		"admin.images":          "Obrázky",
		"admin.thumbnail":       "Náhľad",
		"admin.upload":          "Nahrať obrázok",
		"admin.content":         "Obsah (Markdown)",
		"admin.publishedAt":     "Publikované",
		"admin.draft":           "Koncept",
		"admin.product":         "Produkt",
		"admin.contact":         "Kontakt",
		"admin.date":            "Dátum",
		"admin.seen":            "Videné",
		"admin.products.empty":  "Žiadne produkty.",
		"admin.confirmDelete":   "Naozaj zmazať?",
		"admin.twofaVerify":     "Overiť",
		"admin.invalidForm":     "Skontrolujte polia: {fields}",
		"admin.saveFailed":      "Uloženie zlyhalo: {reason}",
		"blog.readMore":         "Čítať ďalej",
		"error.notFound":        "Stránka sa nenašla.",
	},
	EN: {
		"site.title":            "Shop",
		"nav.home":              "Home",
		"nav.sold":              "Sold",
		"nav.blog":              "Blog",
		"nav.categories":        "Categories",
		"nav.language":          "Language",
		"category.all":          "All",
		"category.empty":        "There are no products in this category yet.",
		"product.price":         "Price",
		"product.sold":          "Sold",
		"product.recreatable":   "Sold, but we can make it again",
		"product.order":         "Order",
		"product.gallery":       "Gallery",
		"order.title":           "Order {title}",
		"order.email":           "Email",
		"order.phone":           "Phone",
		"order.contactRequired": "Enter an email or a phone number.",
		"order.submit":          "Send order",
		"order.thanks":          "Thank you! We will get back to you soon.",
		"order.unavailable":     "This product is no longer available.",
		"sold.title":            "Sold pieces",
		"sold.empty":            "Nothing has been sold yet.",
		"sold.at":               "Sold {date}",
		"blog.latest":           "Latest posts",
		"blog.empty":            "No posts yet.",
		"blog.by":               "By {author}",
		"admin.dashboard":       "Dashboard",
		"admin.categories":      "Categories",
		"admin.products":        "Products",
		"admin.posts":           "Posts",
		"admin.orders":          "Orders",
		"admin.logout":          "Log out",
		"admin.login":           "Log in",
		"admin.email":           "Email",
		"admin.password":        "Password",
		"admin.save":            "Save",
		"admin.delete":          "Delete",
		"admin.edit":            "Edit",
		"admin.new":             "New",
		"admin.title":           "Title",
		"admin.slug":            "Slug",
		"admin.parent":          "Parent category",
		"admin.noParent":        "None (root)",
		"admin.reorder":         "Reorder products",
		"admin.unseenOrders":    "New orders: {count}",
		"admin.markSeen":        "Mark as seen",
		"admin.invalidLogin":    "Invalid email or password.",
		"admin.invalidCode":     "Invalid verification code.",
		"admin.twofa":           "Two-factor authentication",
		"admin.twofaCode":       "Verification code",
		"admin.twofaScan":       "Scan the QR code with your authenticator app.",
		"admin.description":     "Description (Markdown)",
		"admin.priceCents":      "Price in cents",
		"admin.primaryCategory": "Primary category",
		"admin.otherCategories": "Other categories",
		"admin.soldAt":          "Sold on",
		"admin.recreatable":     "Can be made again",
		"admin.images":          "Images",
		"admin.thumbnail":       "Thumbnail",
		"admin.upload":          "Upload image",
		"admin.content":         "Content (Markdown)",
		"admin.publishedAt":     "Published",
		"admin.draft":           "Draft",
		"admin.product":         "Product",
		"admin.contact":         "Contact",
		"admin.date":            "Date",
		"admin.seen":            "Seen",
		"admin.products.empty":  "No products.",
		"admin.confirmDelete":   "Really delete?",
		"admin.twofaVerify":     "Verify",
		"admin.invalidForm":     "Please check these fields: {fields}",
		"admin.saveFailed":      "Could not save: {reason}",
		"blog.readMore":         "Read more",
		"error.notFound":        "Page not found.",
	},
}
