package calendar

// nationalHolidays are fixed month-day national holidays.
var nationalHolidays = map[string]string{
	"01-01": "Confraternização Universal",
	"04-21": "Tiradentes",
	"05-01": "Dia do Trabalho",
	"09-07": "Independência do Brasil",
	"10-12": "Nossa Senhora Aparecida",
	"11-02": "Finados",
	"11-15": "Proclamação da República",
	"12-25": "Natal",
}

// cityHolidays is keyed by city name.
var cityHolidays = map[string]map[string]string{
	"São Paulo": {
		"01-25": "Aniversário de São Paulo",
		"07-09": "Revolução Constitucionalista",
		"11-20": "Consciência Negra",
	},
	"Rio de Janeiro": {
		"01-20": "São Sebastião",
		"04-23": "Dia de São Jorge",
		"11-20": "Zumbi dos Palmares",
	},
	"Brasília": {
		"04-21": "Fundação de Brasília",
		"11-30": "Dia do Evangélico",
	},
	"Salvador": {
		"06-24": "São João",
		"12-08": "Nossa Senhora da Conceição",
	},
	"Belo Horizonte": {
		"08-15": "Assunção de Nossa Senhora",
		"12-08": "Nossa Senhora da Conceição",
	},
	"Porto Alegre": {
		"02-02": "Nossa Senhora dos Navegantes",
		"09-20": "Revolução Farroupilha",
	},
	"Curitiba": {
		"09-08": "Nossa Senhora da Luz dos Pinhais",
	},
	"Recife": {
		"07-16": "Nossa Senhora do Carmo",
		"12-08": "Nossa Senhora da Conceição",
	},
	"Fortaleza": {
		"04-13": "Aniversário de Fortaleza",
		"08-15": "Nossa Senhora da Assunção",
	},
	"Manaus": {
		"10-24": "Aniversário de Manaus",
		"12-08": "Nossa Senhora da Conceição",
	},
	"Florianópolis": {
		"03-23": "Aniversário de Florianópolis",
	},
}

// regionHolidays is keyed by two-letter state code.
var regionHolidays = map[string]map[string]string{
	"AC": {"01-20": "Dia do Católico", "06-15": "Aniversário do Estado", "09-05": "Dia da Amazônia"},
	"AL": {"06-24": "São João", "06-29": "São Pedro", "09-16": "Emancipação Política", "11-20": "Dia da Consciência Negra"},
	"AP": {"03-19": "Dia de São José", "09-13": "Criação do Estado"},
	"AM": {"09-05": "Elevação do Amazonas à Categoria de Província", "11-20": "Dia da Consciência Negra", "12-08": "Nossa Senhora da Conceição"},
	"BA": {"07-02": "Independência da Bahia"},
	"CE": {"03-19": "Dia de São José", "03-25": "Data Magna do Ceará"},
	"DF": {"04-21": "Fundação de Brasília", "11-30": "Dia do Evangélico"},
	"MA": {"07-28": "Adesão do Maranhão à Independência"},
	"MT": {"11-20": "Dia da Consciência Negra"},
	"MS": {"10-11": "Criação do Estado"},
	"MG": {"04-21": "Data Magna de Minas Gerais"},
	"PA": {"08-15": "Adesão do Grão-Pará"},
	"PB": {"08-05": "Fundação da Paraíba"},
	"PE": {"03-06": "Data Magna de Pernambuco", "06-24": "São João"},
	"PI": {"10-19": "Dia do Piauí"},
	"RJ": {"04-23": "Dia de São Jorge", "11-20": "Dia da Consciência Negra"},
	"RN": {"10-03": "Mártires de Cunhaú e Uruaçu"},
	"RS": {"09-20": "Revolução Farroupilha"},
	"RO": {"01-04": "Criação do Estado", "06-18": "Dia do Evangélico"},
	"RR": {"10-05": "Criação do Estado"},
	"SP": {"07-09": "Revolução Constitucionalista", "11-20": "Dia da Consciência Negra"},
	"SE": {"07-08": "Emancipação Política"},
	"TO": {"09-08": "Nossa Senhora da Natividade", "10-05": "Criação do Estado"},
}

// KnownCity reports whether a regional holiday table exists for the city.
func KnownCity(city string) bool {
	_, ok := cityHolidays[city]
	return ok
}
