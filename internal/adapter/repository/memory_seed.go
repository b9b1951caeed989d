package repository

import "strconv"

// SeedDemoCatalog fills an in-process store with a small catalog so the
// memory backend is usable without a Firebase project.
func SeedDemoCatalog(store *MemoryDocumentStore) {
	products := []struct {
		id       string
		data     map[string]interface{}
		variants []map[string]interface{}
	}{
		{
			id: "moletom-basico",
			data: map[string]interface{}{
				fieldName:        "Moletom Básico",
				fieldCategory:    "moletons",
				fieldDescription: "Moletom de algodão com capuz.",
				fieldPrice:       149.90,
				fieldOldPrice:    189.90,
				fieldBadge:       "Promo",
				fieldImages:      []interface{}{"linear-gradient(135deg, #1f2937, #4b5563)"},
				fieldColors: []interface{}{
					map[string]interface{}{fieldColorName: "Preto", fieldColorHex: "#111827"},
					map[string]interface{}{fieldColorName: "Cinza", fieldColorHex: "#9ca3af"},
				},
				fieldSizes: []interface{}{"P", "M", "G", "GG"},
			},
			variants: []map[string]interface{}{
				{fieldVariantSize: "P", fieldVariantColor: "Preto", fieldVariantStock: 2},
				{fieldVariantSize: "M", fieldVariantColor: "Preto", fieldVariantStock: 8},
				{fieldVariantSize: "G", fieldVariantColor: "Cinza", fieldVariantStock: 5},
				{fieldVariantSize: "GG", fieldVariantColor: "Cinza", fieldVariantStock: 0},
			},
		},
		{
			id: "camiseta-logo",
			data: map[string]interface{}{
				fieldName:        "Camiseta Logo",
				fieldCategory:    "camisetas",
				fieldDescription: "Camiseta 100% algodão.",
				fieldPrice:       79.90,
				fieldLegacyImage: "linear-gradient(135deg, #f9fafb, #d1d5db)",
				fieldColors:      []interface{}{"Branco", "Azul"},
			},
		},
		{
			id: "bone-aba-curva",
			data: map[string]interface{}{
				fieldName:     "Boné Aba Curva",
				fieldCategory: "acessorios",
				fieldPrice:    59.90,
				fieldImages:   []interface{}{"linear-gradient(135deg, #1e3a8a, #3b82f6)"},
				fieldSizes:    []interface{}{"U"},
			},
			variants: []map[string]interface{}{
				{fieldVariantSize: "U", fieldVariantColor: "Azul", fieldVariantStock: 12, fieldVariantPrice: 54.90},
			},
		},
	}

	for _, p := range products {
		store.Seed(productsCollection, p.id, p.data)
		for i, v := range p.variants {
			store.Seed(SubcollectionPath(productsCollection, p.id, variantsCollection), p.id+"-"+strconv.Itoa(i+1), v)
		}
	}
}
