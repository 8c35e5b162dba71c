package offers

import "slices"

// Subcategory is an offer subcategory and the category it belongs to.
type Subcategory struct {
	ID         string
	CategoryID string
	Label      string
	IsEvent    bool
}

// Subcategories lists the offer subcategories grouped by category.
var Subcategories = []Subcategory{
	{"SEANCE_CINE", "CINEMA", "Séance de cinéma", true},
	{"EVENEMENT_CINE", "CINEMA", "Ciné-club ou autre évènement cinéma", true},
	{"FESTIVAL_CINE", "CINEMA", "Festival de cinéma", true},
	{"CARTE_CINE_MULTISEANCES", "CINEMA", "Carte cinéma multi-séances", false},
	{"CARTE_CINE_ILLIMITE", "CINEMA", "Carte cinéma illimité", false},
	{"CINE_PLEIN_AIR", "CINEMA", "Cinéma plein air", true},

	{"CONFERENCE", "CONFERENCE", "Conférence", true},
	{"RENCONTRE", "CONFERENCE", "Rencontre", true},
	{"DECOUVERTE_METIERS", "CONFERENCE", "Découverte des métiers", true},
	{"SALON", "CONFERENCE", "Salon, Convention", true},
	{"RENCONTRE_EN_LIGNE", "CONFERENCE", "Rencontre en ligne", true},

	{"SUPPORT_PHYSIQUE_FILM", "FILM", "Support physique (DVD, Blu-ray...)", false},
	{"ABO_MEDIATHEQUE", "FILM", "Abonnement médiathèque", false},
	{"VOD", "FILM", "Vidéo à la demande", false},
	{"ABO_PLATEFORME_VIDEO", "FILM", "Abonnement plateforme streaming", false},
	{"AUTRE_SUPPORT_NUMERIQUE", "FILM", "Autre support numérique", false},

	{"ACHAT_INSTRUMENT", "INSTRUMENT", "Achat instrument", false},
	{"BON_ACHAT_INSTRUMENT", "INSTRUMENT", "Bon d'achat instrument", false},
	{"LOCATION_INSTRUMENT", "INSTRUMENT", "Location instrument", false},
	{"PARTITION", "INSTRUMENT", "Partition", false},

	{"CONCOURS", "JEU", "Concours - jeux", true},
	{"RENCONTRE_JEU", "JEU", "Rencontres - jeux", true},
	{"ESCAPE_GAME", "JEU", "Escape game", true},
	{"EVENEMENT_JEU", "JEU", "Évènements - jeux", true},
	{"JEU_EN_LIGNE", "JEU", "Jeux en ligne", false},
	{"ABO_JEU_VIDEO", "JEU", "Abonnement jeux vidéos", false},
	{"ABO_LUDOTHEQUE", "JEU", "Abonnement ludothèque", false},
	{"JEU_SUPPORT_PHYSIQUE", "JEU", "Jeu support physique", false},

	{"LIVRE_PAPIER", "LIVRE", "Livre papier", false},
	{"LIVRE_NUMERIQUE", "LIVRE", "Livre numérique, e-book", false},
	{"TELECHARGEMENT_LIVRE_AUDIO", "LIVRE", "Livre audio à télécharger", false},
	{"LIVRE_AUDIO_PHYSIQUE", "LIVRE", "Livre audio sur support physique", false},
	{"ABO_BIBLIOTHEQUE", "LIVRE", "Abonnement (bibliothèques, médiathèques...)", false},
	{"ABO_LIVRE_NUMERIQUE", "LIVRE", "Abonnement livres numériques", false},
	{"FESTIVAL_LIVRE", "LIVRE", "Festival et salon du livre", true},

	{"VISITE", "MUSEE", "Visite", false},
	{"VISITE_GUIDEE", "MUSEE", "Visite guidée", true},
	{"EVENEMENT_PATRIMOINE", "MUSEE", "Évènement et atelier patrimoine", true},
	{"VISITE_VIRTUELLE", "MUSEE", "Visite virtuelle", false},
	{"MUSEE_VENTE_DISTANCE", "MUSEE", "Musée vente à distance", false},
	{"CARTE_MUSEE", "MUSEE", "Abonnement musée, carte ou pass", false},

	{"CONCERT", "MUSIQUE_LIVE", "Concert", true},
	{"EVENEMENT_MUSIQUE", "MUSIQUE_LIVE", "Autre type d'évènement musical", true},
	{"LIVESTREAM_MUSIQUE", "MUSIQUE_LIVE", "Livestream musical", true},
	{"ABO_CONCERT", "MUSIQUE_LIVE", "Abonnement concert", false},
	{"FESTIVAL_MUSIQUE", "MUSIQUE_LIVE", "Festival de musique", true},

	{"SUPPORT_PHYSIQUE_MUSIQUE_CD", "MUSIQUE_ENREGISTREE", "CD", false},
	{"SUPPORT_PHYSIQUE_MUSIQUE_VINYLE", "MUSIQUE_ENREGISTREE", "Vinyles et autres supports", false},
	{"TELECHARGEMENT_MUSIQUE", "MUSIQUE_ENREGISTREE", "Téléchargement de musique", false},
	{"ABO_PLATEFORME_MUSIQUE", "MUSIQUE_ENREGISTREE", "Abonnement plateforme musicale", false},
	{"CAPTATION_MUSIQUE", "MUSIQUE_ENREGISTREE", "Captation musicale", false},

	{"SEANCE_ESSAI_PRATIQUE_ART", "PRATIQUE_ART", "Séance d'essai", true},
	{"ATELIER_PRATIQUE_ART", "PRATIQUE_ART", "Atelier, stage de pratique artistique", true},
	{"ABO_PRATIQUE_ART", "PRATIQUE_ART", "Abonnement pratique artistique", false},
	{"PRATIQUE_ART_VENTE_DISTANCE", "PRATIQUE_ART", "Pratique artistique - vente à distance", false},
	{"LIVESTREAM_PRATIQUE_ARTISTIQUE", "PRATIQUE_ART", "Pratique artistique - livestream", true},

	{"ABO_PRESSE_EN_LIGNE", "MEDIA", "Abonnement presse en ligne", false},
	{"PODCAST", "MEDIA", "Podcast", false},
	{"APP_CULTURELLE", "MEDIA", "Application culturelle", false},

	{"SPECTACLE_REPRESENTATION", "SPECTACLE", "Spectacle, représentation", true},
	{"SPECTACLE_ENREGISTRE", "SPECTACLE", "Spectacle enregistré", false},
	{"LIVESTREAM_EVENEMENT", "SPECTACLE", "Livestream d'évènement", true},
	{"FESTIVAL_SPECTACLE", "SPECTACLE", "Festival de spectacle vivant", true},
	{"ABO_SPECTACLE", "SPECTACLE", "Abonnement spectacle", false},
	{"SPECTACLE_VENTE_DISTANCE", "SPECTACLE", "Spectacle vivant - vente à distance", false},

	{"MATERIEL_ART_CREATIF", "BEAUX_ARTS", "Matériel arts créatifs", false},

	{"CARTE_JEUNES", "CARTE_JEUNES", "Carte jeunes", false},
}

// CategoryIDs returns the category identifiers in order of first appearance.
func CategoryIDs() []string {
	var ids []string
	for _, s := range Subcategories {
		if !slices.Contains(ids, s.CategoryID) {
			ids = append(ids, s.CategoryID)
		}
	}
	return ids
}

// SubcategoryIDs returns every subcategory identifier.
func SubcategoryIDs() []string {
	ids := make([]string, len(Subcategories))
	for i, s := range Subcategories {
		ids[i] = s.ID
	}
	return ids
}

// SubcategoriesOf returns the subcategory identifiers of the given categories.
func SubcategoriesOf(categories []string) []string {
	var ids []string
	for _, s := range Subcategories {
		if slices.Contains(categories, s.CategoryID) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
