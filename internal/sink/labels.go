package sink

import (
	"fmt"

	"github.com/nconklindev/pricesheet/internal/types"
)

type text struct {
	columns    []string
	columnN    string
	title      string
	createdAt  string
	sourceFile string
	statsTitle string
	stats      []string
	summary    string
}

var texts = map[types.Language]text{
	types.LanguageFa: {
		columns:    []string{"نام محصول", "قیمت", "دسته‌بندی"},
		columnN:    "ستون %d",
		title:      "لیست محصولات و قیمت‌ها",
		createdAt:  "تاریخ ایجاد",
		sourceFile: "فایل منبع",
		statsTitle: "آمار تبدیل",
		stats: []string{
			"تعداد کل ردیف‌های پردازش شده",
			"ردیف‌های خالی نادیده گرفته شده",
			"ردیف‌های نامعتبر نادیده گرفته شده",
			"تعداد محصولات تکراری حذف شده",
			"تعداد محصولات یکتا",
			"تعداد ستون‌ها",
			"زمان پردازش",
		},
		summary: "خلاصه",
	},
	types.LanguageEn: {
		columns:    []string{"Product Name", "Price", "Category"},
		columnN:    "Column %d",
		title:      "Products and Prices",
		createdAt:  "Created",
		sourceFile: "Source file",
		statsTitle: "Conversion statistics",
		summary:    "Summary",
	},
}

func textFor(lang types.Language) text {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[types.LanguageEn]
}

// Labels returns the header row for columns output columns
func Labels(lang types.Language, columns int) []string {
	t := textFor(lang)
	out := make([]string, columns)
	for i := range out {
		if i < len(t.columns) {
			out[i] = t.columns[i]
		} else {
			out[i] = fmt.Sprintf(t.columnN, i+1)
		}
	}
	return out
}

// statLines localizes the labels of stats.Lines where a translation exists.
func statLines(lang types.Language, stats types.Stats) []types.StatLine {
	lines := stats.Lines()
	t := textFor(lang)
	for i := range lines {
		if i < len(t.stats) {
			lines[i].Label = t.stats[i]
		}
	}
	return lines
}
