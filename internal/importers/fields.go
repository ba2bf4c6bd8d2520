package importers

// Field is a semantic column the classifier knows how to find.
type Field int

const (
	FieldISBN Field = iota
	FieldTitle
	FieldAuthor
	FieldGenre
	FieldDescription
	FieldPrice
	FieldStock
	FieldQuantity
	FieldLineTotal
)

func (f Field) String() string {
	switch f {
	case FieldISBN:
		return "ISBN (or EAN/barcode/code)"
	case FieldTitle:
		return "title"
	case FieldAuthor:
		return "author"
	case FieldGenre:
		return "genre"
	case FieldDescription:
		return "description"
	case FieldPrice:
		return "price"
	case FieldStock:
		return "stock"
	case FieldQuantity:
		return "quantity"
	case FieldLineTotal:
		return "line total"
	default:
		return "unknown"
	}
}

// Mode selects which fields are looked for and which are mandatory.
type Mode string

const (
	ModeCatalog Mode = "catalog"
	ModeSales   Mode = "sales"
)

// exactAlias marks an alias that must equal the whole folded header. Generic
// words like "code" would otherwise match "postcode" or "codigodoautor".
const exactAlias = "="

// fieldAliases maps each field to alias substrings ordered by specificity.
// Aliases are compared against folded header text: lower case, no accents,
// letters and digits only ("Cód. Barras" → "codbarras").
var fieldAliases = map[Field][]string{
	FieldISBN: {"isbn13", "isbn10", "isbn", "ean13", "ean", "gtin", "codigodebarras", "codbarras", "barcode",
		"codigodoproduto", "codigoproduto", "codproduto", "productcode", "itemcode", "sku",
		"=codigo", "=cod", "=code"},
	FieldQuantity:    {"quantidadevendida", "qtdvendida", "vendidos", "vendida", "sold", "quantidade", "quantity", "qtde", "qtd", "qty", "unidades", "units"},
	FieldStock:       {"estoqueatual", "estoque", "stock", "saldo", "disponivel", "inventory", "quantidade", "quantity", "qtde", "qtd", "qty"},
	FieldPrice:       {"precodevenda", "precovenda", "precounitario", "preco", "unitprice", "price", "valorunitario", "valor", "value"},
	FieldLineTotal:   {"valortotal", "precototal", "totaldavenda", "totalvenda", "subtotal", "linetotal", "totalprice", "amount", "total"},
	FieldAuthor:      {"autor", "author", "escritor", "writer"},
	FieldGenre:       {"genero", "genre", "categoria", "category", "assunto", "subject"},
	FieldDescription: {"sinopse", "synopsis", "descricao", "description", "resumo", "summary"},
	FieldTitle:       {"titulo", "title", "nomedolivro", "livro", "book", "obra", "produto", "product", "nome", "name", "item"},
}

// resolutionOrder lists the fields each mode resolves, in claim order. A
// column claimed by an earlier field is not offered to later ones, so fields
// with generic aliases (title: "nome", "produto") come last. Line totals are
// claimed before prices so "Valor Total" never reads as a unit price; catalog
// imports ignore the claimed column.
var resolutionOrder = map[Mode][]Field{
	ModeCatalog: {FieldISBN, FieldStock, FieldLineTotal, FieldPrice, FieldAuthor, FieldGenre, FieldDescription, FieldTitle},
	ModeSales:   {FieldISBN, FieldQuantity, FieldLineTotal, FieldPrice, FieldTitle},
}

// mandatoryFields must all be present for a row to be accepted as the header.
var mandatoryFields = map[Mode][]Field{
	ModeCatalog: {FieldISBN},
	ModeSales:   {FieldISBN, FieldQuantity},
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := resolutionOrder[m]
	return ok
}
