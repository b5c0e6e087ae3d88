package category

import "strings"

// descriptionKeywords maps substrings commonly seen in receipt line
// descriptions to a canonical category. Ordered from most to least specific;
// the first match wins. This is the static companion to the history-based
// pattern model: it covers merchants and goods a fresh install has never
// spent on.
var descriptionKeywords = []struct {
	keyword  string
	category string
}{
	{"CÀ PHÊ", AnUong},
	{"CAFE", AnUong},
	{"COFFEE", AnUong},
	{"TRÀ SỮA", AnUong},
	{"PHỞ", AnUong},
	{"BÁNH MÌ", AnUong},
	{"CƠM", AnUong},
	{"BÚN", AnUong},
	{"NHÀ HÀNG", AnUong},
	{"RESTAURANT", AnUong},
	{"GROCERY", TapHoa},
	{"SIÊU THỊ", TapHoa},
	{"MART", TapHoa},
	{"COOP", TapHoa},
	{"WINMART", TapHoa},
	{"BÁCH HOÁ", TapHoa},
	{"GRAB", DiLai},
	{"TAXI", DiLai},
	{"XĂNG", DiLai},
	{"PETROL", DiLai},
	{"GỬI XE", DiLai},
	{"PARKING", DiLai},
	{"TIỀN ĐIỆN", HoaDon},
	{"TIỀN NƯỚC", HoaDon},
	{"INTERNET", HoaDon},
	{"WIFI", HoaDon},
	{"THUỐC", SucKhoe},
	{"PHARMACY", SucKhoe},
	{"BỆNH VIỆN", SucKhoe},
	{"KHÁM", SucKhoe},
	{"CINEMA", GiaiTri},
	{"CGV", GiaiTri},
	{"PHIM", GiaiTri},
	{"GAME", GiaiTri},
	{"SÁCH", GiaoDuc},
	{"HỌC", GiaoDuc},
	{"VÉ MÁY BAY", DuLich},
	{"KHÁCH SẠN", DuLich},
	{"HOTEL", DuLich},
	{"THÚ CƯNG", ThuCung},
	{"PET", ThuCung},
}

// GuessFromDescription suggests a canonical category for a line-item
// description by keyword containment. ok is false when no keyword matches.
func GuessFromDescription(description string) (string, bool) {
	upper := strings.ToUpper(description)
	for _, entry := range descriptionKeywords {
		if strings.Contains(upper, entry.keyword) {
			return entry.category, true
		}
	}
	return "", false
}
