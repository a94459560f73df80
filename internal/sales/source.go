package sales

import "strings"

// SourceKind to rodzina eksportu, rozpoznawana po nagłówkach.
type SourceKind string

const (
	SourceRedeCartao SourceKind = "Rede Cartão"
	SourceRedePix    SourceKind = "Rede Pix"
	SourcePagSeguro  SourceKind = "PagSeguro"
	SourceSigma      SourceKind = "Sigma"
	SourceUnknown    SourceKind = "Desconhecido"
)

var modalityKeys = []string{"Modalidade", "modalidade", "MODALIDADE"}

// DetectSourceByHeaders klasyfikuje upload po nagłówkach pierwszego wiersza.
// Reguły sprawdzane są w stałej kolejności, wygrywa pierwsza pasująca.
// Tylko Rede Pix zagląda dodatkowo w wartości kolumny "modalidade".
func DetectSourceByHeaders(rows []RawRow) SourceKind {
	if len(rows) == 0 {
		return SourceUnknown
	}

	headers := make(map[string]struct{}, len(rows[0]))
	compact := make(map[string]struct{}, len(rows[0]))
	for _, k := range rows[0].Keys() {
		h := cleanKey(k)
		headers[h] = struct{}{}
		compact[strings.ReplaceAll(h, " ", "")] = struct{}{}
	}
	has := func(h string) bool {
		_, ok := headers[h]
		return ok
	}
	hasCompact := func(h string) bool {
		_, ok := compact[h]
		return ok
	}

	switch {
	case (hasCompact("modalidade") || hasCompact("tipo")) && hasCompact("valorvenda"):
		return SourceSigma
	case has("forma de pagamento") && has("identificacao da maquininha"):
		return SourcePagSeguro
	case has("modalidade") && has("numero de parcelas"):
		return SourceRedeCartao
	case has("modalidade") && has("codigo da maquininha") && anyPixModality(rows):
		return SourceRedePix
	}
	return SourceUnknown
}

func anyPixModality(rows []RawRow) bool {
	for _, r := range rows {
		if NormalizeText(GetString(r, modalityKeys, "")) == "pix" {
			return true
		}
	}
	return false
}
