package sales

// Field to pole logiczne rekordu sprzedaży.
type Field int

const (
	FieldStatus Field = iota
	FieldModality
	FieldGrossAmount
	FieldDate
	FieldTime
	FieldInstallments
	FieldTerminal
	FieldBrand
)

func (f Field) String() string {
	switch f {
	case FieldStatus:
		return "status"
	case FieldModality:
		return "modalidade"
	case FieldGrossAmount:
		return "valor"
	case FieldDate:
		return "data"
	case FieldTime:
		return "hora"
	case FieldInstallments:
		return "parcelas"
	case FieldTerminal:
		return "terminal"
	case FieldBrand:
		return "bandeira"
	}
	return "?"
}

// FieldMap: pole -> grupy kandydatów nagłówków, sprawdzane po kolei.
// Większość źródeł ma jedną grupę; Sigma ma kilka, bo jej eksporty się różnią.
type FieldMap map[Field][][]string

// Value zwraca pierwszą niepustą wartość z kolejnych grup albo nil.
func (m FieldMap) Value(row RawRow, f Field) any {
	for _, group := range m[f] {
		if v := GetValue(row, group, nil); v != nil {
			return v
		}
	}
	return nil
}

func (m FieldMap) Text(row RawRow, f Field) string {
	return toString(m.Value(row, f))
}

var redeCartaoFields = FieldMap{
	FieldStatus:       {{"Status da Venda", "status da venda", "Status"}},
	FieldModality:     {{"Modalidade", "modalidade"}},
	FieldGrossAmount:  {{"Valor da Venda Original", "valor da venda original", "Valor Original", "Valor da Venda", "Valor Bruto"}},
	FieldDate:         {{"Data da Venda", "data da venda", "Data"}},
	FieldTime:         {{"Hora da Venda", "hora da venda", "Hora"}},
	FieldInstallments: {{"Número de Parcelas", "Numero de Parcelas", "numero de parcelas", "Parcelas"}},
	FieldTerminal:     {{"Terminal", "terminal", "Número do Terminal", "Código da Maquininha"}},
	FieldBrand:        {{"Bandeira", "bandeira"}},
}

var redePixFields = FieldMap{
	FieldStatus:       {{"Status da Venda", "status da venda", "Status"}},
	FieldModality:     {{"Modalidade", "modalidade"}},
	FieldGrossAmount:  {{"Valor da Venda", "valor da venda", "Valor da Venda Original", "Valor Original", "Valor"}},
	FieldDate:         {{"Data da Venda", "data da venda", "Data"}},
	FieldTime:         {{"Hora da Venda", "hora da venda", "Hora"}},
	FieldInstallments: {{"Número de Parcelas", "Parcelas"}},
	FieldTerminal:     {{"Código da Maquininha", "Codigo da Maquininha", "codigo da maquininha", "Terminal"}},
	FieldBrand:        {{"Bandeira", "bandeira"}},
}

var pagSeguroFields = FieldMap{
	FieldStatus:       {{"Status", "status", "Status da Transação", "Situação"}},
	FieldModality:     {{"Forma de Pagamento", "forma de pagamento", "Meio de Pagamento"}},
	FieldGrossAmount:  {{"Valor Bruto", "valor bruto", "Valor da Transação", "Valor Total", "Valor"}},
	FieldDate:         {{"Data da Transação", "data da transacao", "Data da Venda", "Data"}},
	FieldTime:         {{"Hora da Transação", "hora da transacao", "Hora"}},
	FieldInstallments: {{"Parcelas", "parcelas", "Quantidade de Parcelas", "Número de Parcelas"}},
	FieldTerminal:     {{"Identificação da Maquininha", "identificacao da maquininha", "Serial da Maquininha", "Código da Maquininha"}},
	FieldBrand:        {{"Bandeira", "bandeira", "Bandeira do Cartão"}},
}

var sigmaFields = FieldMap{
	FieldStatus: {
		{"Status", "status"},
		{"Situação", "Situacao"},
		{"Status da Venda"},
	},
	FieldModality: {
		{"Modalidade", "modalidade"},
		{"Tipo", "tipo"},
		{"Tipo de Pagamento", "Forma de Pagamento"},
	},
	FieldGrossAmount: {
		{"Valor Venda", "valor venda", "ValorVenda", "valorvenda"},
		{"Valor Bruto", "valor bruto"},
		{"Valor", "valor"},
		{"Valor da Venda", "Valor Original"},
	},
	FieldDate: {
		{"Data Venda", "data venda", "DataVenda"},
		{"Data", "data"},
		{"Data da Venda", "Data Transação"},
		{"Dt Venda", "Dt. Venda"},
	},
	FieldTime: {
		{"Hora Venda", "hora venda", "HoraVenda"},
		{"Hora", "hora"},
		{"Hora da Venda", "Hora Transação"},
	},
	FieldInstallments: {
		{"Parcelas", "parcelas"},
		{"Qtd Parcelas", "Qtde Parcelas", "Quantidade Parcelas"},
		{"Nº Parcelas", "Numero Parcelas", "Número de Parcelas"},
		{"Plano", "plano"},
	},
	FieldTerminal: {
		{"Terminal", "terminal"},
		{"Nº Terminal", "Numero Terminal", "Número Terminal"},
		{"Serial", "Número de Série", "Numero de Serie"},
		{"Maquininha", "Código da Maquininha"},
	},
	FieldBrand: {
		{"Bandeira", "bandeira"},
		{"Bandeira Cartão", "Bandeira do Cartão"},
		{"Cartão", "Cartao"},
		{"Produto", "produto"},
	},
}

// genericFields łączy warianty wszystkich znanych źródeł.
var genericFields = FieldMap{
	FieldStatus:       {{"Status", "Status da Venda", "Situação", "Status da Transação"}},
	FieldModality:     {{"Modalidade", "Forma de Pagamento", "Tipo", "Tipo de Pagamento", "Meio de Pagamento"}},
	FieldGrossAmount:  {{"Valor Bruto", "Valor da Venda Original", "Valor da Venda", "Valor Venda", "Valor Original", "Valor da Transação", "Valor"}},
	FieldDate:         {{"Data da Venda", "Data Venda", "Data da Transação", "Data"}},
	FieldTime:         {{"Hora da Venda", "Hora Venda", "Hora da Transação", "Hora"}},
	FieldInstallments: {{"Número de Parcelas", "Parcelas", "Quantidade de Parcelas", "Qtd Parcelas"}},
	FieldTerminal:     {{"Terminal", "Código da Maquininha", "Identificação da Maquininha", "Serial", "Número do Terminal"}},
	FieldBrand:        {{"Bandeira", "Bandeira do Cartão", "Cartão"}},
}

// FieldsFor zwraca tabelę mapowania dla źródła; nieznane dostaje ogólną.
func FieldsFor(source SourceKind) FieldMap {
	switch source {
	case SourceRedeCartao:
		return redeCartaoFields
	case SourceRedePix:
		return redePixFields
	case SourcePagSeguro:
		return pagSeguroFields
	case SourceSigma:
		return sigmaFields
	}
	return genericFields
}
