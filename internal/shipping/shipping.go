// Package shipping holds the per-wilaya flat delivery fee table.
package shipping

// rateDa maps each of Algeria's 58 wilayas to its cash-on-delivery fee in
// Dinar. Northern wilayas ship for less; deep-south routes cost the most.
var rateDa = map[string]int64{
	"Adrar":               800,
	"Chlef":               600,
	"Laghouat":            700,
	"Oum El Bouaghi":      600,
	"Batna":               600,
	"Béjaïa":              500,
	"Biskra":              700,
	"Béchar":              900,
	"Blida":               400,
	"Bouira":              500,
	"Tamanrasset":         1200,
	"Tébessa":             700,
	"Tlemcen":             600,
	"Tiaret":              600,
	"Tizi Ouzou":          500,
	"Alger":               400,
	"Djelfa":              700,
	"Jijel":               550,
	"Sétif":               550,
	"Saïda":               650,
	"Skikda":              550,
	"Sidi Bel Abbès":      600,
	"Annaba":              600,
	"Guelma":              600,
	"Constantine":         550,
	"Médéa":               500,
	"Mostaganem":          550,
	"M'Sila":              650,
	"Mascara":             600,
	"Ouargla":             900,
	"Oran":                500,
	"El Bayadh":           800,
	"Illizi":              1200,
	"Bordj Bou Arréridj":  550,
	"Boumerdès":           450,
	"El Tarf":             650,
	"Tindouf":             1200,
	"Tissemsilt":          650,
	"El Oued":             800,
	"Khenchela":           700,
	"Souk Ahras":          650,
	"Tipaza":              450,
	"Mila":                600,
	"Aïn Defla":           550,
	"Naâma":               800,
	"Aïn Témouchent":      600,
	"Ghardaïa":            800,
	"Relizane":            600,
	"Timimoun":            1000,
	"Bordj Badji Mokhtar": 1200,
	"Ouled Djellal":       750,
	"Béni Abbès":          1000,
	"In Salah":            1100,
	"In Guezzam":          1200,
	"Touggourt":           850,
	"Djanet":              1200,
	"El M'Ghair":          800,
	"El Meniaa":           900,
}

// Lookup returns the flat shipping fee for a wilaya, or 0 when unmapped.
func Lookup(wilaya string) int64 {
	return rateDa[wilaya]
}

// IsValidWilaya reports whether the name is one of the 58 official wilayas.
func IsValidWilaya(wilaya string) bool {
	_, ok := rateDa[wilaya]
	return ok
}

// Wilayas returns the wilaya names for enumeration (unordered).
func Wilayas() []string {
	out := make([]string, 0, len(rateDa))
	for w := range rateDa {
		out = append(out, w)
	}
	return out
}
