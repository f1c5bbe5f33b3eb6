package region

// italianRegions maps each canonical area code of the feed to its accepted aliases.
// The first alias is the display name.
var italianRegions = map[string][]string{
	"ABR": {"Abruzzo"},
	"BAS": {"Basilicata"},
	"CAL": {"Calabria"},
	"CAM": {"Campania"},
	"EMR": {"Emilia-Romagna", "Emilia Romagna", "Emilia", "Romagna"},
	"FVG": {"Friuli-Venezia Giulia", "Friuli Venezia Giulia", "Friuli", "Venezia", "Giulia"},
	"LAZ": {"Lazio"},
	"LIG": {"Liguria"},
	"LOM": {"Lombardia"},
	"MAR": {"Marche"},
	"MOL": {"Molise"},
	"PAT": {"Provincia autonoma di Trento", "Trento", "provincia", "autonoma"},
	"PAB": {"Provincia autonoma di Bolzano", "Bolzano", "Bozen", "provincia", "autonoma"},
	"PIE": {"Piemonte"},
	"PUG": {"Puglia"},
	"SAR": {"Sardegna"},
	"SIC": {"Sicilia"},
	"TOS": {"Toscana"},
	"UMB": {"Umbria"},
	"VDA": {"Valle d'Aosta", "Vallée d'Aoste", "Val", "Valle", "d'Aosta", "Vallée", "d'Aoste"},
	"VEN": {"Veneto"},
}

// nationalAliases select the country-wide scope.
var nationalAliases = []string{"ITA", "Italia", "Italy"}

// DefaultTable returns a copy of the built-in region table.
func DefaultTable() map[string][]string {
	out := make(map[string][]string, len(italianRegions))
	for code, aliases := range italianRegions {
		out[code] = append([]string(nil), aliases...)
	}
	return out
}
