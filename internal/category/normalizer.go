// Package category maps free-form spending labels onto the fixed canonical
// category and type sets enforced by the remote store, and orders categories
// for presentation by recent usage.
package category

import "strings"

// Canonical category names, as stored by the backend. The set is closed;
// every persisted expense must carry one of these.
const (
	AnUong       = "Ăn uống"
	TapHoa       = "Tạp hoá"
	DiLai        = "Đi lại"
	NhaCua       = "Nhà cửa"
	HoaDon       = "Hoá đơn"
	SucKhoe      = "Sức khỏe"
	QuaVat       = "Quà vật"
	BieuGiaDinh  = "Biểu gia đình"
	GiaiTri      = "Giải trí"
	MuaSam       = "Mua sắm"
	GiaoDuc      = "Giáo dục"
	DuLich       = "Du lịch"
	ThuCung      = "Thú cưng"
	Khac         = "Khác"
)

// DefaultCategory is the safe fallback for labels nothing else can place.
const DefaultCategory = Khac

// Canonical spending type names.
const (
	TypePhaiChi  = "Phải chi"
	TypePhatSinh = "Phát sinh"
	TypeLangPhi  = "Lãng phí"
)

// DefaultType is assigned when extraction does not supply a spending type.
const DefaultType = TypePhatSinh

// Canonical returns the canonical category list in its fixed order.
func Canonical() []string {
	return []string{
		AnUong, TapHoa, DiLai, NhaCua, HoaDon, SucKhoe, QuaVat,
		BieuGiaDinh, GiaiTri, MuaSam, GiaoDuc, DuLich, ThuCung, Khac,
	}
}

// CanonicalTypes returns the canonical spending type list.
func CanonicalTypes() []string {
	return []string{TypePhaiChi, TypePhatSinh, TypeLangPhi}
}

// synonyms maps known non-canonical labels to canonical categories. Keys are
// lowercased. It covers spelling variants found in historical data and the
// labels the extraction client tends to produce, both Vietnamese and English.
var synonyms = map[string]string{
	// Spelling variants from historical imports.
	"quà vặt":       QuaVat,
	"sức khoẻ":      SucKhoe,
	"biếu gia đình": BieuGiaDinh,

	// Near-categories the extraction client produces.
	"gia dụng":    TapHoa,
	"siêu thị":    TapHoa,
	"chợ":         TapHoa,
	"cà phê":      AnUong,
	"nhà hàng":    AnUong,
	"quán ăn":     AnUong,
	"xăng":        DiLai,
	"xăng xe":     DiLai,
	"thuê nhà":    NhaCua,
	"điện nước":   HoaDon,
	"internet":    HoaDon,
	"thuốc":       SucKhoe,
	"nhà thuốc":   SucKhoe,
	"quần áo":     MuaSam,
	"học phí":     GiaoDuc,
	"sách":        GiaoDuc,
	"phim":        GiaiTri,

	// English labels from vision model output.
	"groceries":      TapHoa,
	"grocery":        TapHoa,
	"supermarket":    TapHoa,
	"household":      TapHoa,
	"food":           AnUong,
	"dining":         AnUong,
	"food & dining":  AnUong,
	"restaurant":     AnUong,
	"coffee":         AnUong,
	"transport":      DiLai,
	"transportation": DiLai,
	"fuel":           DiLai,
	"gas":            DiLai,
	"housing":        NhaCua,
	"rent":           NhaCua,
	"bills":          HoaDon,
	"utilities":      HoaDon,
	"health":         SucKhoe,
	"healthcare":     SucKhoe,
	"pharmacy":       SucKhoe,
	"snacks":         QuaVat,
	"entertainment":  GiaiTri,
	"shopping":       MuaSam,
	"clothing":       MuaSam,
	"education":      GiaoDuc,
	"travel":         DuLich,
	"pets":           ThuCung,
	"pet":            ThuCung,
	"other":          Khac,
	"misc":           Khac,
	"miscellaneous":  Khac,
}

// typeSynonyms maps non-canonical spending type labels to canonical types.
var typeSynonyms = map[string]string{
	"necessary":  TypePhaiChi,
	"essential":  TypePhaiChi,
	"must":       TypePhaiChi,
	"incidental": TypePhatSinh,
	"unplanned":  TypePhatSinh,
	"wasteful":   TypeLangPhi,
	"waste":      TypeLangPhi,
}

// rule is one step of the normalization chain. It either places the label or
// passes it to the next rule.
type rule func(label string) (string, bool)

// Normalizer resolves free-form category labels onto the canonical set. The
// resolution policy is an explicit ordered rule list: exact canonical match,
// then synonym table, then the fixed default. Normalize is pure and total.
type Normalizer struct {
	rules     []rule
	canonical map[string]string
}

// NewNormalizer creates a normalizer over the canonical category set.
func NewNormalizer() *Normalizer {
	canonical := make(map[string]string, len(Canonical()))
	for _, name := range Canonical() {
		canonical[strings.ToLower(name)] = name
	}

	n := &Normalizer{canonical: canonical}
	n.rules = []rule{
		n.exactMatch,
		n.synonymMatch,
		n.fallback,
	}
	return n
}

// Normalize maps any label to a member of the canonical category set. It
// never fails; unmappable labels resolve to DefaultCategory.
func (n *Normalizer) Normalize(label string) string {
	cleaned := strings.TrimSpace(label)
	for _, r := range n.rules {
		if result, ok := r(cleaned); ok {
			return result
		}
	}
	// Unreachable: fallback always matches.
	return DefaultCategory
}

// NormalizeType maps any spending type label to a canonical type, defaulting
// to DefaultType for empty or unknown labels.
func (n *Normalizer) NormalizeType(label string) string {
	cleaned := strings.TrimSpace(label)
	if cleaned == "" {
		return DefaultType
	}
	lower := strings.ToLower(cleaned)
	for _, name := range CanonicalTypes() {
		if strings.ToLower(name) == lower {
			return name
		}
	}
	if canonical, ok := typeSynonyms[lower]; ok {
		return canonical
	}
	return DefaultType
}

func (n *Normalizer) exactMatch(label string) (string, bool) {
	canonical, ok := n.canonical[strings.ToLower(label)]
	return canonical, ok
}

func (n *Normalizer) synonymMatch(label string) (string, bool) {
	canonical, ok := synonyms[strings.ToLower(label)]
	return canonical, ok
}

func (n *Normalizer) fallback(_ string) (string, bool) {
	return DefaultCategory, true
}
