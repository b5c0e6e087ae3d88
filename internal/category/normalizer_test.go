package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		label string
		want  string
	}{
		{
			name:  "canonical label unchanged",
			label: "Ăn uống",
			want:  AnUong,
		},
		{
			name:  "canonical label case insensitive",
			label: "tạp hoá",
			want:  TapHoa,
		},
		{
			name:  "known near-category maps to groceries",
			label: "Gia dụng",
			want:  TapHoa,
		},
		{
			name:  "historical spelling variant",
			label: "Quà vặt",
			want:  QuaVat,
		},
		{
			name:  "english label from vision model",
			label: "Groceries",
			want:  TapHoa,
		},
		{
			name:  "surrounding whitespace trimmed",
			label: "  Đi lại  ",
			want:  DiLai,
		},
		{
			name:  "unknown label falls back to default",
			label: "hoàn toàn lạ",
			want:  Khac,
		},
		{
			name:  "empty label falls back to default",
			label: "",
			want:  Khac,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.label))
		})
	}
}

// Normalize must be total: any input resolves to a canonical category.
func TestNormalizer_Totality(t *testing.T) {
	n := NewNormalizer()
	canonical := make(map[string]bool)
	for _, name := range Canonical() {
		canonical[name] = true
	}

	inputs := []string{
		"", " ", "???", "Gia dụng", "GROCERIES", "Tạp hoá", "123",
		"một nhãn chưa từng thấy", "\t\n", "Food & Dining", "quà vặt",
	}
	for _, input := range inputs {
		got := n.Normalize(input)
		assert.True(t, canonical[got], "Normalize(%q) returned non-canonical %q", input, got)
	}
}

func TestNormalizer_Idempotence(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{"Gia dụng", "groceries", "Ăn uống", "nonsense", ""}
	for _, input := range inputs {
		once := n.Normalize(input)
		assert.Equal(t, once, n.Normalize(once), "Normalize not idempotent for %q", input)
	}
}

func TestNormalizer_NormalizeType(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		label string
		want  string
	}{
		{name: "canonical type unchanged", label: "Phải chi", want: TypePhaiChi},
		{name: "case insensitive", label: "lãng phí", want: TypeLangPhi},
		{name: "english synonym", label: "wasteful", want: TypeLangPhi},
		{name: "empty defaults", label: "", want: TypePhatSinh},
		{name: "unknown defaults", label: "whatever", want: TypePhatSinh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.NormalizeType(tt.label))
		})
	}
}

func TestCanonicalSetSize(t *testing.T) {
	require.Len(t, Canonical(), 14)
	require.Len(t, CanonicalTypes(), 3)
	assert.Contains(t, Canonical(), DefaultCategory)
	assert.Contains(t, CanonicalTypes(), DefaultType)
}
